package config

// NewPolicyForTest creates a Policy config for testing purposes
func NewPolicyForTest(riskMatrixPath, memberFilePath string) *Policy {
	return &Policy{
		riskMatrixPath: riskMatrixPath,
		memberFilePath: memberFilePath,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend string) *Repository {
	return &Repository{backend: backend}
}

// NewNotifierForTest creates a Notifier config for testing purposes
func NewNotifierForTest(kind string, kafkaBrokers []string, kafkaTopic string) *Notifier {
	return &Notifier{kind: kind, kafkaBrokers: kafkaBrokers, kafkaTopic: kafkaTopic}
}

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(jwtSecret, jwtIssuer, noAuthUID string) *Auth {
	return &Auth{jwtSecret: jwtSecret, jwtIssuer: jwtIssuer, noAuthUID: noAuthUID}
}
