package main

// exitCodeFor maps an error returned from rootCmd.ExecuteContext (flag
// parsing failures, or a config/home-directory bootstrap error that
// predates refusal handling) to a process exit code. Refusals are never
// surfaced this way — they are rendered and their own exit code stashed in
// the package-level exitCode var before RunE returns nil.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
