package cli

var (
	GetIndexConfig  = getIndexConfig
	WriteRiskMatrix = writeRiskMatrix
)
