// Package secret fetches raw secrets for a scope and resolves import precedence.
//
// A run calls Fetcher.Fetch once with an access token, then Merge turns the
// response into an immutable Map:
//
//	resp, err := secret.NewFetcher().Fetch(ctx, scope, token)
//	if err != nil {
//		return err
//	}
//	resolved := secret.Merge(resp)
//
// Direct secrets always win over imported ones. Among import blocks, the block
// listed first by the service wins over blocks listed after it.
package secret
