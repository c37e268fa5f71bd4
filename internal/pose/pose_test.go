package pose_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Martin-Chauke/Legend-Cut/internal/landmarks"
	"github.com/Martin-Chauke/Legend-Cut/internal/pose"
)

const (
	frameWidth  = 640
	frameHeight = 480
)

// The six model points used by the solver, in the estimator's order.
var facePoints = [6][3]float64{
	{0, 0, 0},
	{0, -330, -65},
	{-225, 170, -135},
	{225, 170, -135},
	{-150, -150, -125},
	{150, -150, -125},
}

var faceIndices = [6]int{
	landmarks.NoseTip,
	landmarks.Chin,
	landmarks.LeftEyeOuter,
	landmarks.RightEyeOuter,
	landmarks.LeftMouth,
	landmarks.RightMouth,
}

// projectMesh renders the face model through a pinhole camera with the given
// rotation matrix and translation, returning a full mesh whose six canonical
// indices carry the projected positions.
func projectMesh(t *testing.T, rot [3][3]float64, trans [3]float64) *landmarks.Set {
	focal := float64(frameWidth)
	cx := float64(frameWidth) / 2
	cy := float64(frameHeight) / 2

	points := make([]landmarks.Point, landmarks.MinMeshPoints)
	for i := range points {
		points[i] = landmarks.Point{X: 0.5, Y: 0.5}
	}

	for i, m := range facePoints {
		xc := rot[0][0]*m[0] + rot[0][1]*m[1] + rot[0][2]*m[2] + trans[0]
		yc := rot[1][0]*m[0] + rot[1][1]*m[1] + rot[1][2]*m[2] + trans[1]
		zc := rot[2][0]*m[0] + rot[2][1]*m[1] + rot[2][2]*m[2] + trans[2]
		require.Greater(t, zc, 0.0, "projected point must be in front of the camera")

		u := focal*xc/zc + cx
		v := focal*yc/zc + cy
		points[faceIndices[i]] = landmarks.Point{X: u / frameWidth, Y: v / frameHeight}
	}

	set, err := landmarks.NewSet(points)
	require.NoError(t, err)
	return set
}

// frontalRotation is a half-turn about X: the model faces the camera with
// image y growing downward.
func frontalRotation() [3][3]float64 {
	return [3][3]float64{{1, 0, 0}, {0, -1, 0}, {0, 0, -1}}
}

func yawedRotation(degrees float64) [3][3]float64 {
	rad := degrees * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	// Ry(yaw) * Rx(pi)
	return [3][3]float64{{c, 0, -s}, {0, -1, 0}, {-s, 0, -c}}
}

func TestEstimate_FrontalFace(t *testing.T) {
	set := projectMesh(t, frontalRotation(), [3]float64{0, 0, 1400})

	head := pose.Estimate(set, frameWidth, frameHeight)

	require.True(t, head.Success, "frontal synthetic face should solve")
	assert.InDelta(t, 0, head.Euler.Y, 2.0, "yaw should be near zero")
	assert.InDelta(t, 0, head.Euler.Z, 2.0, "roll should be near zero")
	assert.InDelta(t, 1400, head.Translation[2], 150, "depth should match the synthetic camera distance")
}

func TestEstimate_YawedFace(t *testing.T) {
	set := projectMesh(t, yawedRotation(15), [3]float64{0, 0, 1400})

	head := pose.Estimate(set, frameWidth, frameHeight)

	require.True(t, head.Success)
	assert.InDelta(t, 15, head.Euler.Y, 2.0, "recovered yaw should match the synthetic rotation")
}

func TestEstimate_DegenerateLandmarks(t *testing.T) {
	// Every landmark collapsed onto one point gives the solver nothing.
	points := make([]landmarks.Point, landmarks.MinMeshPoints)
	for i := range points {
		points[i] = landmarks.Point{X: 0.5, Y: 0.5}
	}
	set, err := landmarks.NewSet(points)
	require.NoError(t, err)

	head := pose.Estimate(set, frameWidth, frameHeight)

	assert.False(t, head.Success, "collapsed landmarks must not claim success")
	assert.Zero(t, head.Euler, "failed solve should carry zero rotation")
}

func TestEstimate_NilSet(t *testing.T) {
	head := pose.Estimate(nil, frameWidth, frameHeight)
	assert.False(t, head.Success)
}

func TestEstimate_InvalidFrameSize(t *testing.T) {
	set := projectMesh(t, frontalRotation(), [3]float64{0, 0, 1400})

	assert.False(t, pose.Estimate(set, 0, frameHeight).Success)
	assert.False(t, pose.Estimate(set, frameWidth, -1).Success)
}
