// Package fingerprint implements the fixed-shape feature vector (C6):
// extraction from raw samples, vectorization to 44 dimensions, and cosine
// similarity between two fingerprints.
package fingerprint

import (
	"math"

	"waveprint/chroma"
	"waveprint/mfcc"
	"waveprint/spectral"
)

// VectorLen is the fixed dimensionality of Vectorize's output.
const VectorLen = 13 + 13 + 3 + 1 + 1 + 1 + 12

// spectralScale commensurates centroid/bandwidth/rolloff (typically in the
// hundreds or low thousands of Hz) with the bounded cosine-space features.
const spectralScale = 1e4

// Fingerprint is the fixed-shape feature vector derived from one sound.
type Fingerprint struct {
	Duration   float64     `json:"duration"`
	SampleRate int         `json:"sample_rate"`
	MFCCMean   [13]float64 `json:"mfcc_mean"`
	MFCCStd    [13]float64 `json:"mfcc_std"`
	Centroid   float64     `json:"spectral_centroid"`
	Bandwidth  float64     `json:"spectral_bandwidth"`
	Rolloff    float64     `json:"spectral_rolloff"`
	RMSMean    float64     `json:"rms_mean"`
	RMSStd     float64     `json:"rms_std"`
	ZCR        float64     `json:"zero_crossing_rate"`
	ChromaMean [12]float64 `json:"chroma_mean"`
}

// Extract runs the MFCC, spectral-statistics, and chroma/energy extractors
// over samples and assembles a Fingerprint. duration is carried through
// unchanged (the caller supplies it, typically from the Audio Loader).
func Extract(samples []float64, sampleRate int, duration float64) (*Fingerprint, error) {
	mfccMean, mfccStd, err := mfcc.Extract(samples, sampleRate)
	if err != nil {
		return nil, err
	}
	stats := spectral.Extract(samples, sampleRate)
	chromaMean := chroma.Extract(samples, sampleRate)
	rmsMean, rmsStd := chroma.RMS(samples)
	zcr := chroma.ZeroCrossingRate(samples)

	return &Fingerprint{
		Duration:   duration,
		SampleRate: sampleRate,
		MFCCMean:   mfccMean,
		MFCCStd:    mfccStd,
		Centroid:   stats.Centroid,
		Bandwidth:  stats.Bandwidth,
		Rolloff:    stats.Rolloff,
		RMSMean:    rmsMean,
		RMSStd:     rmsStd,
		ZCR:        zcr,
		ChromaMean: chromaMean,
	}, nil
}

// Vectorize flattens the fingerprint into the fixed 44-dimensional vector
// used for cosine similarity.
func (f *Fingerprint) Vectorize() []float64 {
	v := make([]float64, 0, VectorLen)
	for _, x := range f.MFCCMean {
		v = append(v, x)
	}
	for _, x := range f.MFCCStd {
		v = append(v, x)
	}
	v = append(v,
		f.Centroid/spectralScale,
		f.Bandwidth/spectralScale,
		f.Rolloff/spectralScale,
		f.RMSMean,
		f.RMSStd,
		f.ZCR,
	)
	for _, x := range f.ChromaMean {
		v = append(v, x)
	}
	return v
}

// Similarity returns the cosine similarity between a and b mapped to
// [0, 100]. A zero norm on either side, or mismatched vector lengths,
// returns 0.
func Similarity(a, b *Fingerprint) float64 {
	return VectorSimilarity(a.Vectorize(), b.Vectorize())
}

// VectorSimilarity is Similarity operating directly on pre-vectorized
// feature vectors.
func VectorSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}
	score := (cos + 1) / 2 * 100
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
