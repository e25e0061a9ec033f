package logcolors

// ANSI color codes for log prefixes
const (
	Reset  = "\033[0m"
	Green  = "\033[32m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"

	// Bright variants for more color variety
	BrightGreen   = "\033[92m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"

	Red       = "\033[31m"
	BrightRed = "\033[91m"
)

// Matching log prefixes
const (
	LogBestMatch  = Green + "[Best Match]" + Reset
	LogTrackScore = Cyan + "[Track Score]" + Reset
	LogAmbiguous  = Red + "[Ambiguous]" + Reset
	LogNoMatch    = Purple + "[No Match]" + Reset
)

// Conversion log prefixes
const (
	LogTTMLParser = Cyan + "[TTML Parser]" + Reset
	LogTTMLWriter = Cyan + "[TTML Writer]" + Reset
	LogConverter  = Blue + "[Converter]" + Reset
	LogLRC        = Blue + "[LRC]" + Reset
)

// Aggregation log prefixes
const (
	LogSelector   = Green + "[Selector]" + Reset
	LogAggregator = Purple + "[Aggregator]" + Reset
	LogProvider   = Blue + "[Provider]" + Reset
	LogStore      = Blue + "[Store]" + Reset
	LogWarning    = Red + "[Warning]" + Reset
)

// Process log prefixes
const (
	LogConfig = Cyan + "[Config]" + Reset
	LogStats  = Blue + "[Stats]" + Reset
	LogCLI    = Green + "[CLI]" + Reset
)

// CircuitBreakerPrefix returns a colored circuit breaker prefix with the given name
func CircuitBreakerPrefix(name string) string {
	return Purple + "[CircuitBreaker:" + name + "]" + Reset
}

var providerColors = []string{
	Green, Blue, Purple, Cyan, Red,
	BrightGreen, BrightBlue, BrightMagenta, BrightCyan, BrightRed,
}

// Provider returns a colored provider name for log messages.
// Same provider name always gets the same color.
func Provider(name string) string {
	hash := 0
	for _, c := range name {
		hash += int(c)
	}
	color := providerColors[hash%len(providerColors)]
	return color + name + Reset
}
