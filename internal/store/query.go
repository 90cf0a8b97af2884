package store

import (
	"encoding/binary"
	"math"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/rcliao/deskmate/internal/model"
)

// statementBuilder returns a Squirrel builder for SQLite, which uses '?'
// placeholders (Squirrel's default).
func statementBuilder() sq.StatementBuilderType {
	return sq.StatementBuilder
}

func memoryColumns() []string {
	return []string{"id", "category", "content", "metadata", "embedding", "created_at"}
}

func categoryEq(c model.Category) sq.Sqlizer {
	return sq.Eq{"category": string(c)}
}

func createdBefore(t time.Time) sq.Sqlizer {
	return sq.Lt{"created_at": t.UnixNano()}
}

// encodeEmbedding packs a vector as little-endian float32s.
func encodeEmbedding(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeEmbedding(b []byte) []float32 {
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
