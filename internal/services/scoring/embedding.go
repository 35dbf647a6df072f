package scoring

import (
	"math"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
)

const embeddingDimensions = 128

// BuildEmbedding derives a deterministic unit vector from structured
// answers. The same answers always produce the same vector, so
// fallback scoring stays stable across runs.
func BuildEmbedding(answers model.Answers) []float64 {
	embedding := make([]float64, embeddingDimensions)

	for _, interest := range answers.Interests {
		embedding[bucketHash(interest)%embeddingDimensions] += 0.5
	}
	for _, value := range answers.Values {
		embedding[(bucketHash(value)+20)%embeddingDimensions] += 0.4
	}
	for _, item := range answers.Lifestyle {
		embedding[(bucketHash(item)+40)%embeddingDimensions] += 0.3
	}

	var sum float64
	for _, v := range embedding {
		sum += v * v
	}
	magnitude := math.Sqrt(sum)
	if magnitude == 0 {
		magnitude = 1
	}
	for i := range embedding {
		embedding[i] /= magnitude
	}

	return embedding
}

// bucketHash is a 32-bit string hash kept identical across processes.
// The sign bit is masked off so callers can add bucket offsets and
// take a modulus without ever producing a negative index.
func bucketHash(s string) int {
	var hash int32
	for _, c := range s {
		hash = (hash << 5) - hash + int32(c)
	}
	return int(uint32(hash) & 0x7fffffff)
}
