package linear

import (
	"math/rand"
	"strconv"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/statkit/glm/design"
)

// benchmarkProblem generates a reproducible random design and response.
func benchmarkProblem(b *testing.B, rows, cols int) (*design.Matrix, []float64) {
	b.Helper()
	rng := rand.New(rand.NewSource(42))

	data := make([]float64, rows*cols)
	names := make([]string, cols)
	names[0] = design.InterceptName
	for j := 1; j < cols; j++ {
		names[j] = "x" + strconv.Itoa(j)
	}
	for i := 0; i < rows; i++ {
		data[i*cols] = 1
		for j := 1; j < cols; j++ {
			data[i*cols+j] = rng.Float64()*2 - 1
		}
	}
	x, err := design.NewMatrix(names, mat.NewDense(rows, cols, data))
	if err != nil {
		b.Fatalf("design.NewMatrix() error = %v", err)
	}

	y := make([]float64, rows)
	for i := 0; i < rows; i++ {
		sum := 1.0
		for j := 1; j < cols; j++ {
			sum += float64(j) * 0.5 * data[i*cols+j]
		}
		y[i] = sum + (rng.Float64()-0.5)*0.1
	}
	return x, y
}

func BenchmarkFit(b *testing.B) {
	sizes := []struct {
		name string
		rows int
		cols int
	}{
		{"Small_100x5", 100, 5},
		{"Medium_1000x10", 1000, 10},
		{"Large_10000x20", 10000, 20},
		{"Wide_1000x50", 1000, 50},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			x, y := benchmarkProblem(b, size.rows, size.cols)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Fit(x, y); err != nil {
					b.Fatalf("Fit() error = %v", err)
				}
			}
		})
	}
}
