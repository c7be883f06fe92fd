package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

// Policy holds the file locations of the risk matrix and member seed
type Policy struct {
	riskMatrixPath string
	memberFilePath string
}

func (x *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "risk-matrix",
			Usage:       "TOML file overriding the default risk level matrix",
			Category:    "Policy",
			Sources:     cli.EnvVars("GRC_RISK_MATRIX"),
			Destination: &x.riskMatrixPath,
		},
		&cli.StringFlag{
			Name:        "member-file",
			Usage:       "TOML file listing every organization member; members absent from it are revoked",
			Category:    "Policy",
			Sources:     cli.EnvVars("GRC_MEMBER_FILE"),
			Destination: &x.memberFilePath,
		},
	}
}

func (x Policy) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("risk_matrix", x.riskMatrixPath),
		slog.String("member_file", x.memberFilePath),
	)
}

type riskMatrixFile struct {
	Cells []riskMatrixCell `toml:"cell"`
}

type riskMatrixCell struct {
	Impact      string `toml:"impact"`
	Probability string `toml:"probability"`
	Level       string `toml:"level"`
}

type memberFile struct {
	Members []memberEntry `toml:"member"`
}

type memberEntry struct {
	UserID         string `toml:"user_id"`
	OrganizationID string `toml:"organization_id"`
	Role           string `toml:"role"`
	Name           string `toml:"name"`
	Email          string `toml:"email"`
}

// RiskMatrix returns the configured matrix, or the default one when no file is set
func (x *Policy) RiskMatrix() (*model.RiskMatrix, error) {
	if x.riskMatrixPath == "" {
		return model.DefaultRiskMatrix(), nil
	}

	var file riskMatrixFile
	if err := loadTOML(x.riskMatrixPath, &file); err != nil {
		return nil, err
	}

	cells := make([]model.RiskMatrixCell, len(file.Cells))
	for i, c := range file.Cells {
		cells[i] = model.RiskMatrixCell{
			Impact:      types.Severity(c.Impact),
			Probability: types.Severity(c.Probability),
			Level:       types.Severity(c.Level),
		}
	}

	m, err := model.NewRiskMatrix(cells)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, err.Error(), goerr.V(ConfigPathKey, x.riskMatrixPath))
	}
	return m, nil
}

// HasMemberFile reports whether a member file is configured
func (x *Policy) HasMemberFile() bool {
	return x.memberFilePath != ""
}

// Members returns the members listed in the member file, or none when no file is set
func (x *Policy) Members() ([]*model.Member, error) {
	if x.memberFilePath == "" {
		return nil, nil
	}

	var file memberFile
	if err := loadTOML(x.memberFilePath, &file); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(file.Members))
	members := make([]*model.Member, 0, len(file.Members))
	for _, e := range file.Members {
		if seen[e.UserID] {
			return nil, goerr.Wrap(ErrInvalidConfig, "duplicate member",
				goerr.V(ConfigPathKey, x.memberFilePath), goerr.V("user_id", e.UserID))
		}
		seen[e.UserID] = true

		m := &model.Member{
			UserID:         types.UserID(e.UserID),
			OrganizationID: types.OrganizationID(e.OrganizationID),
			Role:           types.Role(e.Role),
			Name:           e.Name,
			Email:          e.Email,
		}
		if err := m.Validate(); err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, err.Error(), goerr.V(ConfigPathKey, x.memberFilePath))
		}
		members = append(members, m)
	}
	return members, nil
}

func loadTOML(path string, dst any) error {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return goerr.Wrap(ErrConfigNotFound, "config file not found", goerr.V(ConfigPathKey, path))
		}
		return goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	if err := toml.Unmarshal(data, dst); err != nil {
		return goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}
	return nil
}
