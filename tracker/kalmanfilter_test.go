package tracker

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// floatsEqual compares slices of float32
func floatsEqual(a, b []float32, epsilon float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if diff := a[i] - b[i]; diff > epsilon || diff < -epsilon {
			return false
		}
	}
	return true
}

// matricesEqual compare matrices
func matricesEqual(a, b mat.Matrix, epsilon float64) bool {
	r1, c1 := a.Dims()
	r2, c2 := b.Dims()

	if r1 != r2 || c1 != c2 {
		return false
	}

	for i := 0; i < r1; i++ {
		for j := 0; j < c1; j++ {
			if diff := a.At(i, j) - b.At(i, j); diff > epsilon || diff < -epsilon {
				return false
			}
		}
	}

	return true
}

// TestKalmanFilter tests for expect output from Kalman Filter.  Input and output
// values are reference results to compare against
func TestKalmanFilter(t *testing.T) {
	kf := NewKalmanFilter(1.0/20, 1.0/160)

	// Initial state mean and covariance
	mean := make(StateMean, 8)
	covariance := &StateCov{mat.NewDense(8, 8, nil)}

	measurement := DetectBox{100.0, 200.0, 1.0, 50.0}

	// Initialize the filter
	kf.Initiate(mean, covariance, measurement)

	expectedMeanInit := StateMean{100.0, 200.0, 1.0, 50.0, 0.0, 0.0, 0.0, 0.0}

	expectedCovarianceInit := mat.NewDense(8, 8, []float64{
		25.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0,
		0.0, 25.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0,
		0.0, 0.0, 9.999999747378752e-05, 0.0, 0.0, 0.0, 0.0, 0.0,
		0.0, 0.0, 0.0, 25.0, 0.0, 0.0, 0.0, 0.0,
		0.0, 0.0, 0.0, 0.0, 9.765625, 0.0, 0.0, 0.0,
		0.0, 0.0, 0.0, 0.0, 0.0, 9.765625, 0.0, 0.0,
		0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 9.999999439624929e-11, 0.0,
		0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 9.765625,
	})

	if !floatsEqual(mean, expectedMeanInit, 1e-4) {
		t.Errorf("expected mean %v, got %v", expectedMeanInit, mean)
	}

	if !matricesEqual(covariance, expectedCovarianceInit, 1e-4) {
		t.Errorf("expected covariance %v, got %v",
			mat.Formatted(expectedCovarianceInit, mat.Prefix(""), mat.Excerpt(0)),
			mat.Formatted(covariance, mat.Prefix(""), mat.Excerpt(0)),
		)
	}

	// Predict the next state
	kf.Predict(mean, covariance)

	expectedMeanPredict := StateMean{100.0, 200.0, 1.0, 50.0, 0.0, 0.0, 0.0, 0.0}
	expectedCovariancePredict := mat.NewDense(8, 8, []float64{
		41.015625, 0.0, 0.0, 0.0, 9.765625, 0.0, 0.0, 0.0,
		0.0, 41.015625, 0.0, 0.0, 0.0, 9.765625, 0.0, 0.0,
		0.0, 0.0, 0.00020000009494756943, 0.0, 0.0, 0.0, 9.999999439624929e-11, 0.0,
		0.0, 0.0, 0.0, 41.015625, 0.0, 0.0, 0.0, 9.765625,
		9.765625, 0.0, 0.0, 0.0, 9.86328125, 0.0, 0.0, 0.0,
		0.0, 9.765625, 0.0, 0.0, 0.0, 9.86328125, 0.0, 0.0,
		0.0, 0.0, 9.999999439624929e-11, 0.0, 0.0, 0.0, 1.9999998879249858e-10, 0.0,
		0.0, 0.0, 0.0, 9.765625, 0.0, 0.0, 0.0, 9.86328125,
	})

	if !floatsEqual(mean, expectedMeanPredict, 1e-4) {
		t.Errorf("expected mean %v, got %v", expectedMeanPredict, mean)
	}

	if !matricesEqual(covariance, expectedCovariancePredict, 1e-4) {
		t.Errorf("expected covariance %v, got %v",
			mat.Formatted(expectedCovariancePredict, mat.Prefix(""), mat.Excerpt(0)),
			mat.Formatted(covariance, mat.Prefix(""), mat.Excerpt(0)),
		)
	}

	// New measurement
	measurement = DetectBox{105.0, 205.0, 1.1, 55.0}

	// Update the filter with the new measurement
	err := kf.Update(mean, covariance, measurement)

	if err != nil {
		t.Errorf("failed to update: %v", err)
	}

	expectedMeanUpdate := StateMean{104.338844, 204.338837, 1.001961, 54.338844, 1.033058, 1.033058, 0.0, 1.033058}
	expectedCovarianceUpdate := mat.NewDense(8, 8, []float64{
		5.423553719008268, 0.0, 0.0, 0.0, 1.2913223140495873, 0.0, 0.0, 0.0,
		0.0, 5.423553719008268, 0.0, 0.0, 0.0, 1.2913223140495873, 0.0, 0.0,
		0.0, 0.0, 0.00019607852290531608, 0.0, 0.0, 0.0, 9.803920941585902e-11, 0.0,
		0.0, 0.0, 0.0, 5.423553719008268, 0.0, 0.0, 0.0, 1.2913223140495873,
		1.291322314049589, 0.0, 0.0, 0.0, 7.845590134297521, 0.0, 0.0, 0.0,
		0.0, 1.291322314049589, 0.0, 0.0, 0.0, 7.845590134297521, 0.0, 0.0,
		0.0, 0.0, 9.803920941585902e-11, 0.0, 0.0, 0.0, 1.9999998781210662e-10, 0.0,
		0.0, 0.0, 0.0, 1.291322314049589, 0.0, 0.0, 0.0, 7.845590134297521,
	})

	if !floatsEqual(mean, expectedMeanUpdate, 1e-4) {
		t.Errorf("expected mean %v, got %v", expectedMeanUpdate, mean)
	}

	if !matricesEqual(covariance, expectedCovarianceUpdate, 1e-4) {
		t.Errorf("expected covariance %v, got %v",
			mat.Formatted(expectedCovarianceUpdate, mat.Prefix(""), mat.Excerpt(0)),
			mat.Formatted(covariance, mat.Prefix(""), mat.Excerpt(0)),
		)
	}
}

// TestKalmanFilterProject checks the measurement space projection adds the
// height scaled noise to the position covariance
func TestKalmanFilterProject(t *testing.T) {
	kf := NewKalmanFilter(1.0/20, 1.0/160)

	mean := make(StateMean, 8)
	covariance := &StateCov{mat.NewDense(8, 8, nil)}
	kf.Initiate(mean, covariance, DetectBox{100.0, 200.0, 1.0, 50.0})

	projMean, projCov := kf.Project(mean, covariance)

	if !floatsEqual(projMean, []float32{100.0, 200.0, 1.0, 50.0}, 1e-4) {
		t.Errorf("unexpected projected mean %v", projMean)
	}

	// initial variance 25 plus (50/20)^2 measurement noise
	expected := []float64{31.25, 31.25, 0.0101, 31.25}

	for i, want := range expected {
		if got := projCov.At(i, i); got-want > 1e-4 || want-got > 1e-4 {
			t.Errorf("projected variance %d: expected %f, got %f", i, want, got)
		}
	}
}

// TestFactorizeJitter checks a singular innovation covariance is recovered
// with diagonal loading and an indefinite one is rejected
func TestFactorizeJitter(t *testing.T) {

	singular := mat.NewSymDense(4, nil)

	_, loaded, err := factorize(singular)

	if err != nil {
		t.Fatalf("expected zero matrix to factorize with jitter, got %v", err)
	}

	// the returned matrix is the jittered one, the input is untouched
	for i := 0; i < 4; i++ {
		if loaded.At(i, i) != jitterStart {
			t.Errorf("expected diagonal %g at %d, got %g", jitterStart, i, loaded.At(i, i))
		}
		if singular.At(i, i) != 0 {
			t.Errorf("expected input diagonal untouched at %d, got %g", i, singular.At(i, i))
		}
	}

	spd := mat.NewSymDense(2, []float64{4, 1, 1, 3})

	if _, same, err := factorize(spd); err != nil || same != spd {
		t.Errorf("expected positive definite matrix factorized as is, got %v", err)
	}

	negative := mat.NewSymDense(4, []float64{
		-1, 0, 0, 0,
		0, -1, 0, 0,
		0, 0, -1, 0,
		0, 0, 0, -1,
	})

	if _, _, err := factorize(negative); !errors.Is(err, ErrSingularCovariance) {
		t.Errorf("expected ErrSingularCovariance, got %v", err)
	}
}

// TestRegularize checks the covariance is made symmetric with a positive
// diagonal
func TestRegularize(t *testing.T) {

	cov := mat.NewDense(2, 2, []float64{
		0, 1,
		3, 4,
	})

	regularize(cov)

	if cov.At(0, 1) != 2 || cov.At(1, 0) != 2 {
		t.Errorf("expected off diagonal 2, got %f %f", cov.At(0, 1), cov.At(1, 0))
	}

	if cov.At(0, 0) != minVariance {
		t.Errorf("expected diagonal floored to %g, got %g", minVariance, cov.At(0, 0))
	}

	if cov.At(1, 1) != 4 {
		t.Errorf("expected diagonal 4 untouched, got %f", cov.At(1, 1))
	}
}

// TestKalmanFilterTracksMotion checks repeated updates converge on a
// constant velocity
func TestKalmanFilterTracksMotion(t *testing.T) {
	kf := NewKalmanFilter(1.0/20, 1.0/160)

	mean := make(StateMean, 8)
	covariance := &StateCov{mat.NewDense(8, 8, nil)}
	kf.Initiate(mean, covariance, DetectBox{100.0, 100.0, 0.5, 100.0})

	for i := 1; i <= 30; i++ {
		kf.Predict(mean, covariance)

		err := kf.Update(mean, covariance, DetectBox{100.0 + 4*float32(i), 100.0, 0.5, 100.0})
		if err != nil {
			t.Fatalf("update %d failed: %v", i, err)
		}
	}

	if mean[4] < 3 || mean[4] > 5 {
		t.Errorf("expected x velocity near 4, got %f", mean[4])
	}

	if mean[5] > 0.1 || mean[5] < -0.1 {
		t.Errorf("expected y velocity near 0, got %f", mean[5])
	}
}
