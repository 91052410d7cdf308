package state

import (
	"math"
	"math/cmplx"
)

// FromBloch creates a qubit from Bloch sphere angles: polar theta in [0, pi]
// and azimuthal phi in [0, 2*pi). The result is
// cos(theta/2)|0> + e^(i*phi)*sin(theta/2)|1>.
func FromBloch(theta, phi float64) Qubit {
	return Qubit{
		alpha: complex(math.Cos(theta/2), 0),
		beta:  cmplx.Exp(complex(0, phi)) * complex(math.Sin(theta/2), 0),
	}
}

// BlochCoordinates returns the qubit's Cartesian coordinates on the Bloch
// sphere: x = 2*Re(conj(alpha)*beta), y = 2*Im(conj(alpha)*beta),
// z = |alpha|^2 - |beta|^2.
func (q Qubit) BlochCoordinates() (x, y, z float64) {
	cross := cmplx.Conj(q.alpha) * q.beta
	x = 2 * real(cross)
	y = 2 * imag(cross)
	z = real(q.alpha)*real(q.alpha) + imag(q.alpha)*imag(q.alpha) -
		real(q.beta)*real(q.beta) - imag(q.beta)*imag(q.beta)
	return x, y, z
}

// BlochAngles returns the polar and azimuthal angles of the qubit on the
// Bloch sphere. The global phase is discarded, so FromBloch(q.BlochAngles())
// equals q only up to a physically irrelevant phase factor.
func (q Qubit) BlochAngles() (theta, phi float64) {
	x, y, z := q.BlochCoordinates()
	theta = math.Acos(math.Max(-1, math.Min(1, z)))
	phi = math.Atan2(y, x)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return theta, phi
}
