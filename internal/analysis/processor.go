// SPDX-License-Identifier: MIT
package analysis

// AudioProcessor is implemented by components that consume the interleaved
// float32 buffers delivered by an audio callback. Implementations run on the
// real-time path and must not block or allocate.
type AudioProcessor interface {
	// Process analyzes one callback buffer. The slice is only valid for the
	// duration of the call.
	Process(interleaved []float32)

	// ProcessFrames analyzes the first frames frames of interleaved.
	ProcessFrames(interleaved []float32, frames int)
}

// Lifecycle is implemented by processors that an audio source must detach
// and clear before tearing down or swapping its stream.
type Lifecycle interface {
	Detach() // Detach makes the processor ignore further callbacks.
	Attach() // Attach resumes processing.
	Reset()  // Reset clears all buffers and publishes an empty pass.
}

// SnapshotProvider is implemented by components that publish amplitude
// snapshots to consumers running outside the audio callback.
type SnapshotProvider interface {
	NewReader() *Reader                   // NewReader subscribes a consumer with its own exchange.
	Unsubscribe(r *Reader)                // Unsubscribe stops publishing to a reader.
	FrequencyForBin(binIndex int) float64 // FrequencyForBin returns the center frequency (Hz) of a bin.
	WindowSize() int                      // WindowSize returns the number of samples (and bins) per pass.
	SampleRate() float64                  // SampleRate returns the sample rate of the analyzed stream.
}

// Compile-time checks for interface implementations.
var _ AudioProcessor = (*Pipeline)(nil)
var _ SnapshotProvider = (*Pipeline)(nil)
var _ Lifecycle = (*Pipeline)(nil)
