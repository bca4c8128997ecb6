// Package auth exchanges machine-identity credentials for a bearer access token.
//
// Two methods are supported:
//   - universal: a client ID and client secret are posted to the universal-auth
//     login endpoint.
//   - oidc: an identity token issued by the invoking CI environment is checked
//     locally (shape, expiry, audience) and exchanged at the oidc-auth login
//     endpoint.
//
// Both return an AccessToken whose String form is redacted. Tokens live for a
// single run and are never cached.
package auth
