package interp

// solve3x3 solves H*alpha = rhs for a symmetric 3x3 H via Cramer's rule.
// Returns ok=false if |det(H)| < 1e-12 (spec §9: "Hessian solve uses a 3x3
// inverse with a det != 0 precondition; fall back to dropping the keypoint
// if |det| < 1e-12").
func solve3x3(h [3][3]float32, rhs [3]float32) (alpha [3]float32, ok bool) {
	det := det3(h)
	if abs32(det) < 1e-12 {
		return alpha, false
	}

	// Cramer's rule: alpha_i = det(H with column i replaced by rhs) / det(H).
	for col := 0; col < 3; col++ {
		m := h
		m[0][col], m[1][col], m[2][col] = rhs[0], rhs[1], rhs[2]
		alpha[col] = det3(m) / det
	}
	return alpha, true
}

func det3(m [3][3]float32) float32 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func maxAbs3(v [3]float32) float32 {
	m := abs32(v[0])
	if a := abs32(v[1]); a > m {
		m = a
	}
	if a := abs32(v[2]); a > m {
		m = a
	}
	return m
}

func roundf(v float32) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return int(v - 0.5)
}
