package stats

// RollingWindow is a fixed-capacity ring buffer that keeps a running sum for
// O(1) averages over the most recent values.
type RollingWindow struct {
	capacity int
	values   []float64
	index    int
	count    int
	sum      float64
}

func NewRollingWindow(capacity int) *RollingWindow {
	if capacity < 1 {
		capacity = 1
	}
	return &RollingWindow{
		capacity: capacity,
		values:   make([]float64, capacity),
	}
}

// Add appends a value, evicting the oldest one once the window is full.
func (rw *RollingWindow) Add(value float64) {
	if rw.count < rw.capacity {
		rw.count++
	} else {
		rw.sum -= rw.values[rw.index]
	}
	rw.values[rw.index] = value
	rw.sum += value
	rw.index = (rw.index + 1) % rw.capacity
}

func (rw *RollingWindow) Average() float64 {
	if rw.count == 0 {
		return 0
	}
	return rw.sum / float64(rw.count)
}

// StdDev returns the population standard deviation of the retained values.
func (rw *RollingWindow) StdDev() float64 {
	return StdDev(rw.Values())
}

// Values returns the retained values; the slice aliases internal storage and
// must not be modified.
func (rw *RollingWindow) Values() []float64 {
	if rw.count < rw.capacity {
		return rw.values[:rw.count]
	}
	return rw.values
}

func (rw *RollingWindow) Count() int {
	return rw.count
}
