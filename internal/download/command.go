package download

// BuildArgs assembles the argument list for one downloader invocation.
// Pure function: identical inputs always produce the identical list.
//
// Pass-through args come after the built-in ones so the caller keeps final
// override authority; the target URL is always last.
func BuildArgs(targetURL, referer, outputTemplate string, passthrough []string) []string {
	args := []string{"--newline", "--no-colors", "--legacy-server-connect"}

	if referer != "" {
		args = append(args, "--add-header", "Referer:"+referer)
	}
	if outputTemplate != "" {
		args = append(args, "--output", outputTemplate)
	}

	args = append(args, passthrough...)
	args = append(args, targetURL)
	return args
}
