package core

const AVG_COUNT uint8 = 30

/**
 * @brief Mean of the last AVG_COUNT samples. Not safe for concurrent use.
 */
type RollingAverage struct {
	samples [AVG_COUNT]float64
	counter uint8
	filled  bool
	sum     float64
	total   int64
}

func (r *RollingAverage) Add(sample float64) {
	r.sum -= r.samples[r.counter]
	r.samples[r.counter] = sample
	r.sum += sample
	r.counter++
	if r.counter == AVG_COUNT {
		r.counter = 0
		r.filled = true
	}
	r.total++
}

func (r *RollingAverage) Average() float64 {
	n := r.counter
	if r.filled {
		n = AVG_COUNT
	}
	if n == 0 {
		return 0
	}
	return r.sum / float64(n)
}

// Count is the number of samples ever added.
func (r *RollingAverage) Count() int64 {
	return r.total
}
