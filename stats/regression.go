package stats

// LinearRegression fits y = slope*x + intercept by ordinary least squares.
// Degenerate input (fewer than two points, mismatched lengths, or all x
// identical) returns slope 0 and intercept mean(y) rather than dividing by
// zero.
func LinearRegression(x, y []float64) (slope, intercept float64) {
	n := len(x)
	if n < 2 || len(y) != n {
		return 0, Mean(y)
	}

	meanX := Mean(x)
	meanY := Mean(y)

	var ssXY, ssXX float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		ssXY += dx * (y[i] - meanY)
		ssXX += dx * dx
	}

	if ssXX == 0 {
		return 0, meanY
	}

	slope = ssXY / ssXX
	intercept = meanY - slope*meanX
	return slope, intercept
}

// Indices returns [0, 1, ..., n-1] as float64, the x axis used when
// regressing a series against its own positions.
func Indices(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}
