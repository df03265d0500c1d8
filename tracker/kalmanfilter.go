package tracker

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

const (
	// minVariance is the floor applied to the diagonal of a track covariance
	// after each measurement update
	minVariance = 1e-12
	// jitterStart is the first diagonal loading tried when the innovation
	// covariance cannot be factorized
	jitterStart = 1e-6
	// jitterRetries is the number of times the diagonal loading is grown by
	// a factor of ten before giving up
	jitterRetries = 5
)

// ErrSingularCovariance is returned by Update when the projected covariance
// could not be factorized even after diagonal loading
var ErrSingularCovariance = errors.New("singular innovation covariance")

// DetectBox represents a 1x4 matrix using a slice of float32
type DetectBox []float32

// StateMean represents a 1x8 matrix using a slice of float32
type StateMean []float32

// StateCov represents an 8x8 matrix
type StateCov struct {
	*mat.Dense
}

// StateHMean represents a 1x4 matrix using a slice of float32
type StateHMean []float32

// StateHCov represents a 4x4 matrix
type StateHCov struct {
	*mat.SymDense
}

// KalmanFilter is a constant velocity Kalman filter over the box state
// [x, y, a, h, vx, vy, va, vh] where (x, y) is the box center, a the aspect
// ratio and h the height.  Process and measurement noise are scaled by the
// current height estimate.
type KalmanFilter struct {
	stdWeightPosition float32
	stdWeightVelocity float32
	motionMat         *mat.Dense
	updateMat         *mat.Dense
}

// NewKalmanFilter initializes and returns a new KalmanFilter
func NewKalmanFilter(stdWeightPosition, stdWeightVelocity float32) *KalmanFilter {

	ndim := 4
	dt := 1.0

	// identity with the dt velocity terms in the upper right block
	motionMat := mat.NewDense(8, 8, nil)

	for i := 0; i < 8; i++ {
		motionMat.Set(i, i, 1.0)
	}

	for i := 0; i < ndim; i++ {
		motionMat.Set(i, ndim+i, dt)
	}

	// observation matrix picks the position block out of the state
	updateMat := mat.NewDense(4, 8, nil)

	for i := 0; i < 4; i++ {
		updateMat.Set(i, i, 1.0)
	}

	return &KalmanFilter{
		stdWeightPosition: stdWeightPosition,
		stdWeightVelocity: stdWeightVelocity,
		motionMat:         motionMat,
		updateMat:         updateMat,
	}
}

// NewStateCov returns a zeroed 8x8 covariance matrix
func NewStateCov() StateCov {
	return StateCov{mat.NewDense(8, 8, nil)}
}

// Initiate seeds the state mean and covariance from an unassociated
// measurement.  Velocities start at zero with a large uncertainty.
func (kf *KalmanFilter) Initiate(mean StateMean, covariance *StateCov,
	measurement DetectBox) {

	copy(mean[:4], measurement[:4])

	for i := 4; i < 8; i++ {
		mean[i] = 0.0
	}

	std := make(StateMean, 8)
	std[0] = 2 * kf.stdWeightPosition * measurement[3]  // x position
	std[1] = 2 * kf.stdWeightPosition * measurement[3]  // y position
	std[2] = 1e-2                                       // aspect ratio
	std[3] = 2 * kf.stdWeightPosition * measurement[3]  // height
	std[4] = 10 * kf.stdWeightVelocity * measurement[3] // x velocity
	std[5] = 10 * kf.stdWeightVelocity * measurement[3] // y velocity
	std[6] = 1e-5                                       // aspect ratio velocity
	std[7] = 10 * kf.stdWeightVelocity * measurement[3] // height velocity

	if covariance.Dense == nil {
		covariance.Dense = mat.NewDense(8, 8, nil)
	} else {
		covariance.Zero()
	}

	for i, v := range std {
		covariance.Set(i, i, float64(v*v))
	}
}

// Predict runs the Kalman filter prediction step in place
func (kf *KalmanFilter) Predict(mean StateMean, covariance *StateCov) {

	std := make(StateMean, 8)
	std[0] = kf.stdWeightPosition * mean[3] // x position
	std[1] = kf.stdWeightPosition * mean[3] // y position
	std[2] = 1e-2                           // aspect ratio
	std[3] = kf.stdWeightPosition * mean[3] // height
	std[4] = kf.stdWeightVelocity * mean[3] // x velocity
	std[5] = kf.stdWeightVelocity * mean[3] // y velocity
	std[6] = 1e-5                           // aspect ratio velocity
	std[7] = kf.stdWeightVelocity * mean[3] // height velocity

	motionCov := mat.NewDense(8, 8, nil)

	for i, v := range std {
		motionCov.Set(i, i, float64(v*v))
	}

	meanVec := mat.NewVecDense(8, toFloat64(mean))

	var next mat.VecDense
	next.MulVec(kf.motionMat, meanVec)

	for i := 0; i < 8; i++ {
		mean[i] = float32(next.AtVec(i))
	}

	// F * P * F^T + Q
	var fp, cov mat.Dense
	fp.Mul(kf.motionMat, covariance.Dense)
	cov.Mul(&fp, kf.motionMat.T())
	cov.Add(&cov, motionCov)

	covariance.Dense = &cov
}

// Project maps the state distribution into measurement space adding the
// height scaled measurement noise
func (kf *KalmanFilter) Project(mean StateMean,
	covariance *StateCov) (StateHMean, *StateHCov) {

	std := make(DetectBox, 4)
	std[0] = kf.stdWeightPosition * mean[3]
	std[1] = kf.stdWeightPosition * mean[3]
	std[2] = 1e-1
	std[3] = kf.stdWeightPosition * mean[3]

	var projectedMeanVec mat.VecDense
	projectedMeanVec.MulVec(kf.updateMat, mat.NewVecDense(8, toFloat64(mean)))

	// H * P * H^T + R
	var hp, hph mat.Dense
	hp.Mul(kf.updateMat, covariance.Dense)
	hph.Mul(&hp, kf.updateMat.T())

	projectedCov := mat.NewSymDense(4, nil)

	for i := 0; i < 4; i++ {
		for j := i; j < 4; j++ {
			projectedCov.SetSym(i, j, hph.At(i, j))
		}
		projectedCov.SetSym(i, i, projectedCov.At(i, i)+float64(std[i]*std[i]))
	}

	projectedMean := make(StateHMean, 4)

	for i := 0; i < 4; i++ {
		projectedMean[i] = float32(projectedMeanVec.AtVec(i))
	}

	return projectedMean, &StateHCov{projectedCov}
}

// Update runs the Kalman filter correction step in place, fusing the
// measurement into the state
func (kf *KalmanFilter) Update(mean StateMean, covariance *StateCov,
	measurement DetectBox) error {

	projectedMean, projectedCov := kf.Project(mean, covariance)

	chol, innovCov, err := factorize(projectedCov.SymDense)

	if err != nil {
		return err
	}

	// P * H^T
	var pht mat.Dense
	pht.Mul(covariance.Dense, kf.updateMat.T())

	// solve S * K^T = (P * H^T)^T for the 4x8 transposed gain
	var gainT mat.Dense

	if err := chol.SolveTo(&gainT, pht.T()); err != nil {
		return fmt.Errorf("failed to compute kalman gain: %w", err)
	}

	innovation := make([]float64, 4)

	for i := 0; i < 4; i++ {
		innovation[i] = float64(measurement[i] - projectedMean[i])
	}

	var correction mat.VecDense
	correction.MulVec(gainT.T(), mat.NewVecDense(4, innovation))

	for i := 0; i < 8; i++ {
		mean[i] += float32(correction.AtVec(i))
	}

	// P - K * S * K^T
	var ks, ksk mat.Dense
	ks.Mul(gainT.T(), innovCov)
	ksk.Mul(&ks, &gainT)

	newCov := mat.NewDense(8, 8, nil)
	newCov.Sub(covariance.Dense, &ksk)

	regularize(newCov)

	covariance.Dense = newCov

	return nil
}

// factorize performs a Cholesky factorization of the innovation covariance,
// loading the diagonal with increasing jitter when the matrix is not
// positive definite.  It returns the matrix that was factorized, which
// carries the jitter if any was added.
func factorize(s *mat.SymDense) (*mat.Cholesky, *mat.SymDense, error) {

	var chol mat.Cholesky

	if chol.Factorize(s) {
		return &chol, s, nil
	}

	n := s.SymmetricDim()
	loaded := mat.NewSymDense(n, nil)
	jitter := jitterStart

	for i := 0; i < jitterRetries; i++ {
		loaded.CopySym(s)

		for d := 0; d < n; d++ {
			loaded.SetSym(d, d, loaded.At(d, d)+jitter)
		}

		if chol.Factorize(loaded) {
			return &chol, loaded, nil
		}

		jitter *= 10
	}

	return nil, nil, ErrSingularCovariance
}

// regularize re-symmetrizes the covariance and floors its diagonal so
// rounding error cannot accumulate into a non positive definite matrix
func regularize(cov *mat.Dense) {

	r, _ := cov.Dims()

	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			avg := (cov.At(i, j) + cov.At(j, i)) / 2
			cov.Set(i, j, avg)
			cov.Set(j, i, avg)
		}

		if cov.At(i, i) < minVariance {
			cov.Set(i, i, minVariance)
		}
	}
}

// toFloat64 converts a float32 vector into a newly allocated float64 slice
func toFloat64(v []float32) []float64 {
	data := make([]float64, len(v))
	for i, f := range v {
		data[i] = float64(f)
	}
	return data
}
