// Package policy defines compression policies and resolves them to
// ffmpeg argument fragments.
package policy

// Compression names one of the closed set of compression policies.
type Compression string

const (
	// Default resolves to GammaEncoding.
	Default Compression = "default"

	// GammaEncoding re-encodes with the gamma/colorspace filter graph.
	GammaEncoding Compression = "gamma-encoding"

	// GammaEncodingFixColorspace is GammaEncoding plus input flags that
	// repair sources whose metadata lacks color primaries.
	GammaEncodingFixColorspace Compression = "gamma-encoding-fix-colorspace"

	// NoGammaEncoding re-encodes without the gamma correction step.
	NoGammaEncoding Compression = "no-gamma-encoding"

	// UserDefined uses the request's raw argument fragments verbatim.
	UserDefined Compression = "user-defined"

	// NoCompression links the file into place unchanged.
	NoCompression Compression = "no-compression"
)

// Compressions lists every valid policy name.
func Compressions() []Compression {
	return []Compression{
		Default,
		GammaEncoding,
		GammaEncodingFixColorspace,
		NoGammaEncoding,
		UserDefined,
		NoCompression,
	}
}

// Valid reports whether c names a known policy.
func (c Compression) Valid() bool {
	switch c {
	case Default, GammaEncoding, GammaEncodingFixColorspace,
		NoGammaEncoding, UserDefined, NoCompression:
		return true
	}
	return false
}

// ArgSet holds raw ffmpeg argument fragments. Input precedes -i on the
// command line, Output follows it. Either may be empty.
type ArgSet struct {
	Input  string
	Output string
}

// Preset argument fragments. The output fragments carry the pixel-format
// conversion, filter graph, codec, and quality settings as raw ffmpeg
// argument text.
const (
	gammaOutputArgs = `-vf "scale=out_color_matrix=bt709:out_range=full:sws_dither=none,` +
		`format=yuv420p10le,colorspace=ispace=bt709:all=bt709:dither=none,` +
		`scale=out_range=tv:sws_dither=none,format=yuv420p" ` +
		`-c:v libx264 -preset veryslow -crf 18 -pix_fmt yuv420p ` +
		`-movflags +faststart+write_colr`

	noGammaOutputArgs = `-vf "scale=out_range=tv:sws_dither=none,format=yuv420p" ` +
		`-c:v libx264 -preset veryslow -crf 18 -pix_fmt yuv420p ` +
		`-movflags +faststart+write_colr`

	fixColorspaceInputArgs = `-color_primaries bt709 -color_trc bt709 -colorspace bt709`
)

// Request is a compression policy as supplied by the caller. The user
// fragments are only consulted when Compression is UserDefined.
type Request struct {
	Compression    Compression
	UserInputArgs  string
	UserOutputArgs string
}

// Resolve maps the request to its concrete argument fragments. A nil
// result means the file is linked into place without invoking the
// transcoder. Resolution is a pure lookup; it cannot fail.
func (r Request) Resolve() *ArgSet {
	switch r.Compression {
	case NoCompression:
		return nil
	case UserDefined:
		return &ArgSet{Input: r.UserInputArgs, Output: r.UserOutputArgs}
	case GammaEncodingFixColorspace:
		return &ArgSet{Input: fixColorspaceInputArgs, Output: gammaOutputArgs}
	case NoGammaEncoding:
		return &ArgSet{Output: noGammaOutputArgs}
	default:
		// Default and GammaEncoding share the same preset.
		return &ArgSet{Output: gammaOutputArgs}
	}
}
