package linear

// Option is a function that configures LinearRegression
type Option func(*LinearRegression)

// WithFitIntercept sets whether to calculate the intercept
func WithFitIntercept(fit bool) Option {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}

// WithRidge sets the Tikhonov regularization strength of the normal
// equations solve
func WithRidge(alpha float64) Option {
	return func(lr *LinearRegression) {
		lr.ridge = alpha
	}
}

// LogisticOption is a functional option for LogisticRegression
type LogisticOption func(*LogisticRegression)

// WithLRMaxIter sets the maximum number of gradient descent iterations
func WithLRMaxIter(maxIter int) LogisticOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance for the stopping criterion
func WithLRTol(tol float64) LogisticOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithLRLearningRate sets the base learning rate
func WithLRLearningRate(rate float64) LogisticOption {
	return func(lr *LogisticRegression) {
		lr.learningRate = rate
	}
}

// WithLogisticFitIntercept sets whether to fit an intercept term
func WithLogisticFitIntercept(fit bool) LogisticOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}
