// Package health runs credential-free preflight checks before a secrets run.
//
// A preflight answers "would a run get off the ground?" without sending any
// credentials: the configuration validates, the service answers its status
// endpoint, and the output location accepts a file.
//
//	p := health.NewPreflight(10 * time.Second)
//	p.Add("config", health.ConfigCheck(cfg.Validate))
//	p.Add("api", health.APICheck(cfg.Domain, nil))
//	p.Add("output", health.OutputCheck(path))
//
//	report := health.NewReport(p.Run(ctx))
//
// Checks run concurrently and each gets its own time budget. A failed check
// fails the preflight; a warning does not.
package health
