package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var ErrMalformedBlob = errors.New("malformed vector blob")

// Encode 按小端 float32 序列化向量
func Encode(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// Decode 反序列化 Encode 的结果；dim > 0 时校验维度
func Decode(buf []byte, dim int) ([]float32, error) {
	if len(buf) == 0 || len(buf)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformedBlob, len(buf))
	}
	n := len(buf) / 4
	if dim > 0 && n != dim {
		return nil, fmt.Errorf("%w: dim %d, want %d", ErrMalformedBlob, n, dim)
	}
	vec := make([]float32, n)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec, nil
}

func FromFloat64(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

func Norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// Normalize 返回 L2 归一化后的副本，零向量原样返回
func Normalize(vec []float32) []float32 {
	n := Norm(vec)
	out := make([]float32, len(vec))
	if n == 0 {
		copy(out, vec)
		return out
	}
	for i, v := range vec {
		out[i] = float32(float64(v) / n)
	}
	return out
}

// Cosine 维度不一致或任一向量为零时 ok=false
func Cosine(a, b []float32) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}

// Mean 逐维平均，维度不一致的向量被忽略
func Mean(vecs [][]float32) []float32 {
	var out []float32
	count := 0
	for _, v := range vecs {
		if len(v) == 0 {
			continue
		}
		if out == nil {
			out = make([]float32, len(v))
		}
		if len(v) != len(out) {
			continue
		}
		for i, x := range v {
			out[i] += x
		}
		count++
	}
	if count == 0 {
		return nil
	}
	for i := range out {
		out[i] /= float32(count)
	}
	return out
}
