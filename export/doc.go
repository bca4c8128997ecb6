// Package export publishes a resolved secret map to its destination.
//
// Two export types are built in:
//   - "env":  each value is masked, then published as an environment variable
//     for later steps of the invoking workflow.
//   - "file": the map is rendered as KEY='VALUE' lines and written atomically
//     to a path under the workspace root.
//
// Exporters are created by type through a Registry. An unknown type is a
// configuration error.
package export
