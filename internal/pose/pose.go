package pose

import (
	"math"

	"github.com/Martin-Chauke/Legend-Cut/internal/landmarks"
)

// EulerAngles holds head rotation in degrees.
type EulerAngles struct {
	X float64 `json:"x"` // pitch
	Y float64 `json:"y"` // yaw
	Z float64 `json:"z"` // roll
}

// HeadPose is the camera-relative pose recovered from one frame's landmarks.
// When Success is false the rotation is unusable and downstream logic must
// treat it as zero.
type HeadPose struct {
	Rotation    [3]float64 // Rodrigues rotation vector
	Translation [3]float64 // millimeters, camera frame
	Euler       EulerAngles
	Success     bool
}

// Generic 3D face model, millimeter scale, nose tip at the origin.
var modelPoints = [6][3]float64{
	{0, 0, 0},          // nose tip
	{0, -330, -65},     // chin
	{-225, 170, -135},  // left eye outer corner
	{225, 170, -135},   // right eye outer corner
	{-150, -150, -125}, // left mouth corner
	{150, -150, -125},  // right mouth corner
}

// Mesh indices paired with modelPoints, in the same order.
var meshIndices = [6]int{
	landmarks.NoseTip,
	landmarks.Chin,
	landmarks.LeftEyeOuter,
	landmarks.RightEyeOuter,
	landmarks.LeftMouth,
	landmarks.RightMouth,
}

const (
	maxIterations = 100
	modelEyeSpan  = 450.0 // distance between the model's outer eye corners
)

// Estimate solves the perspective-n-point problem for the six canonical
// landmarks against the fixed face model, using a pinhole camera with focal
// length equal to the frame width and the principal point at the frame
// center. It reports Success=false instead of an error when the solve cannot
// produce a usable rotation.
func Estimate(set *landmarks.Set, width, height int) HeadPose {
	if set == nil || width <= 0 || height <= 0 {
		return HeadPose{}
	}

	var imagePoints [6][2]float64
	for i, idx := range meshIndices {
		x, y := set.Pixel(idx, width, height)
		imagePoints[i] = [2]float64{x, y}
	}

	focal := float64(width)
	cx := float64(width) / 2
	cy := float64(height) / 2

	params, ok := solvePnP(imagePoints, focal, cx, cy)
	if !ok {
		return HeadPose{}
	}

	rvec := [3]float64{params[0], params[1], params[2]}
	tvec := [3]float64{params[3], params[4], params[5]}
	rmat := rodrigues(rvec)

	return HeadPose{
		Rotation:    rvec,
		Translation: tvec,
		Euler:       eulerFromMatrix(rmat),
		Success:     true,
	}
}

// solvePnP runs a Levenberg-Marquardt refinement over the six pose
// parameters (rotation vector, translation). The camera faces the model's
// back in model coordinates, so the rotation is seeded with a half-turn
// about X, which is the known solution neighborhood for near-frontal faces.
func solvePnP(imagePoints [6][2]float64, focal, cx, cy float64) ([6]float64, bool) {
	eyeSpan := math.Abs(imagePoints[3][0] - imagePoints[2][0])
	if eyeSpan < 1e-3 {
		return [6]float64{}, false
	}

	tz := focal * modelEyeSpan / eyeSpan
	tx := (imagePoints[0][0] - cx) * tz / focal
	ty := (imagePoints[0][1] - cy) * tz / focal

	p := [6]float64{math.Pi, 0, 0, tx, ty, tz}

	cost, ok := reprojectionCost(p, imagePoints, focal, cx, cy)
	if !ok {
		return [6]float64{}, false
	}

	lambda := 1e-3
	for iter := 0; iter < maxIterations; iter++ {
		jac, res, ok := jacobian(p, imagePoints, focal, cx, cy)
		if !ok {
			return [6]float64{}, false
		}

		// Normal equations: (J'J + lambda*diag(J'J)) delta = -J'r
		var jtj [6][6]float64
		var jtr [6]float64
		for i := 0; i < 12; i++ {
			for a := 0; a < 6; a++ {
				jtr[a] += jac[i][a] * res[i]
				for b := 0; b < 6; b++ {
					jtj[a][b] += jac[i][a] * jac[i][b]
				}
			}
		}

		improved := false
		for attempt := 0; attempt < 20; attempt++ {
			var aug [6][6]float64
			for a := 0; a < 6; a++ {
				copy(aug[a][:], jtj[a][:])
				d := jtj[a][a]
				if d < 1e-12 {
					d = 1e-12
				}
				aug[a][a] += lambda * d
			}

			var rhs [6]float64
			for a := 0; a < 6; a++ {
				rhs[a] = -jtr[a]
			}

			delta, solvable := solve6(aug, rhs)
			if !solvable {
				lambda *= 10
				if lambda > 1e12 {
					return [6]float64{}, false
				}
				continue
			}

			var candidate [6]float64
			for a := 0; a < 6; a++ {
				candidate[a] = p[a] + delta[a]
			}

			candCost, candOK := reprojectionCost(candidate, imagePoints, focal, cx, cy)
			if candOK && candCost < cost {
				converged := math.Abs(cost-candCost) < 1e-10*(cost+1e-12)
				p = candidate
				cost = candCost
				lambda = math.Max(lambda*0.5, 1e-12)
				improved = true
				if converged {
					iter = maxIterations
				}
				break
			}

			lambda *= 10
			if lambda > 1e12 {
				improved = false
				iter = maxIterations
				break
			}
		}

		if !improved {
			break
		}
	}

	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return [6]float64{}, false
		}
	}
	if p[5] <= 0 {
		return [6]float64{}, false
	}
	// Reject solves that never explained the observations.
	if math.Sqrt(cost/12) > 1e3 {
		return [6]float64{}, false
	}

	return p, true
}

// reprojectionCost returns the summed squared pixel error of the model
// projected with the given parameters.
func reprojectionCost(p [6]float64, imagePoints [6][2]float64, focal, cx, cy float64) (float64, bool) {
	res, ok := residuals(p, imagePoints, focal, cx, cy)
	if !ok {
		return 0, false
	}
	var cost float64
	for _, r := range res {
		cost += r * r
	}
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return 0, false
	}
	return cost, true
}

func residuals(p [6]float64, imagePoints [6][2]float64, focal, cx, cy float64) ([12]float64, bool) {
	rmat := rodrigues([3]float64{p[0], p[1], p[2]})

	var res [12]float64
	for i, m := range modelPoints {
		xc := rmat[0][0]*m[0] + rmat[0][1]*m[1] + rmat[0][2]*m[2] + p[3]
		yc := rmat[1][0]*m[0] + rmat[1][1]*m[1] + rmat[1][2]*m[2] + p[4]
		zc := rmat[2][0]*m[0] + rmat[2][1]*m[1] + rmat[2][2]*m[2] + p[5]
		if zc < 1e-6 {
			return res, false
		}
		u := focal*xc/zc + cx
		v := focal*yc/zc + cy
		res[i*2] = u - imagePoints[i][0]
		res[i*2+1] = v - imagePoints[i][1]
	}
	return res, true
}

// jacobian computes the 12x6 residual Jacobian by central differences.
func jacobian(p [6]float64, imagePoints [6][2]float64, focal, cx, cy float64) ([12][6]float64, [12]float64, bool) {
	var jac [12][6]float64

	base, ok := residuals(p, imagePoints, focal, cx, cy)
	if !ok {
		return jac, base, false
	}

	for a := 0; a < 6; a++ {
		eps := 1e-6
		if a >= 3 {
			eps = 1e-3
		}

		plus := p
		plus[a] += eps
		minus := p
		minus[a] -= eps

		rp, okP := residuals(plus, imagePoints, focal, cx, cy)
		rm, okM := residuals(minus, imagePoints, focal, cx, cy)
		if !okP || !okM {
			return jac, base, false
		}

		for i := 0; i < 12; i++ {
			jac[i][a] = (rp[i] - rm[i]) / (2 * eps)
		}
	}

	return jac, base, true
}

// solve6 solves a 6x6 linear system by Gaussian elimination with partial
// pivoting. Reports false for singular systems.
func solve6(a [6][6]float64, b [6]float64) ([6]float64, bool) {
	for col := 0; col < 6; col++ {
		pivot := col
		for row := col + 1; row < 6; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return [6]float64{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < 6; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < 6; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	var x [6]float64
	for row := 5; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < 6; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, true
}

// rodrigues converts a rotation vector to a rotation matrix.
func rodrigues(r [3]float64) [3][3]float64 {
	theta := math.Sqrt(r[0]*r[0] + r[1]*r[1] + r[2]*r[2])
	if theta < 1e-12 {
		return [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}

	kx, ky, kz := r[0]/theta, r[1]/theta, r[2]/theta
	c := math.Cos(theta)
	s := math.Sin(theta)
	t := 1 - c

	return [3][3]float64{
		{c + kx*kx*t, kx*ky*t - kz*s, kx*kz*t + ky*s},
		{ky*kx*t + kz*s, c + ky*ky*t, ky*kz*t - kx*s},
		{kz*kx*t - ky*s, kz*ky*t + kx*s, c + kz*kz*t},
	}
}

// eulerFromMatrix decomposes a rotation matrix into Euler angles in degrees,
// substituting the two-angle formula near the gimbal-lock singularity.
func eulerFromMatrix(m [3][3]float64) EulerAngles {
	sy := math.Sqrt(m[0][0]*m[0][0] + m[1][0]*m[1][0])

	var x, y, z float64
	if sy >= 1e-6 {
		x = math.Atan2(m[2][1], m[2][2])
		y = math.Atan2(-m[2][0], sy)
		z = math.Atan2(m[1][0], m[0][0])
	} else {
		x = math.Atan2(-m[1][2], m[1][1])
		y = math.Atan2(-m[2][0], sy)
		z = 0
	}

	const degPerRad = 180 / math.Pi
	return EulerAngles{X: x * degPerRad, Y: y * degPerRad, Z: z * degPerRad}
}
