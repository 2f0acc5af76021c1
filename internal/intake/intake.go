// Package intake converts non-text problem submissions (photos of
// worked problems, spoken questions) into plain problem text for the
// parsing stage.
package intake

import "context"

// Result is the text recovered from an image or audio submission.
type Result struct {
	// Text is the recovered problem statement.
	Text string

	// Confidence is the extractor's self-reported confidence in [0,1].
	// Audio transcription does not report confidence and always sets 1.
	Confidence float64

	// NeedsReview is set when the recovered text should be confirmed
	// with the user before solving.
	NeedsReview bool
}

// reviewThreshold is the confidence below which extracted text is
// flagged for user confirmation.
const reviewThreshold = 0.7

// ImageReader extracts problem text from an image file.
type ImageReader interface {
	ReadImage(ctx context.Context, path string) (*Result, error)
}

// AudioReader transcribes problem text from an audio file.
type AudioReader interface {
	ReadAudio(ctx context.Context, path string) (*Result, error)
}
