package space

// Vec is a general-purpose element holding its values directly. It can
// be used as the element type of any Space.
type Vec struct {
	Disc []int
	Cont []float64
}

// Discrete implements the Elem interface
func (v Vec) Discrete(d int) (int, bool) {
	if d < 0 || d >= len(v.Disc) {
		return 0, false
	}
	return v.Disc[d], true
}

// Continuous implements the Elem interface
func (v Vec) Continuous(d int) (float64, bool) {
	if d < 0 || d >= len(v.Cont) {
		return 0, false
	}
	return v.Cont[d], true
}

// Build implements the Builder interface. The values are copied.
func (Vec) Build(_ Space, discrete []int, continuous []float64) (Vec, error) {
	v := Vec{}
	if len(discrete) > 0 {
		v.Disc = append([]int(nil), discrete...)
	}
	if len(continuous) > 0 {
		v.Cont = append([]float64(nil), continuous...)
	}
	return v, nil
}

// PlayerVec is a Vec which is also a State, acted in by Player
type PlayerVec struct {
	Vec
	Player int
}

// CurrentPlayer implements the State interface
func (p PlayerVec) CurrentPlayer() int {
	return p.Player
}

// Build implements the Builder interface. Built states always belong
// to player 0.
func (PlayerVec) Build(s Space, discrete []int,
	continuous []float64) (PlayerVec, error) {
	v, err := Vec{}.Build(s, discrete, continuous)
	return PlayerVec{Vec: v}, err
}
