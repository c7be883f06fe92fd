package usecase

// ResultLabel exposes the metrics label mapping for tests
var ResultLabel = resultLabel
