package cmd

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/cosmos/cosmos-sdk/server"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"
)

func validateAppConfig(cmd *cobra.Command) error {
	serverCtx := server.GetServerContextFromCmd(cmd)

	var cfg AppConfig
	if err := serverCtx.Viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to decode app config: %w", err)
	}

	if err := cfg.ValidateBasic(); err != nil {
		return err
	}

	return nil
}

// ValidateBasic performs comprehensive validation of app.toml configuration.
func (c AppConfig) ValidateBasic() error {
	if err := c.Config.ValidateBasic(); err != nil {
		return err
	}

	if _, err := sdk.ParseDecCoins(c.MinGasPrices); err != nil {
		return fmt.Errorf("invalid min gas prices: %w", err)
	}

	if c.API.Enable {
		if err := validateListenAddress("api.address", c.API.Address); err != nil {
			return err
		}
		if c.API.MaxOpenConnections <= 0 {
			return fmt.Errorf("api.max-open-connections must be positive")
		}
	}

	if c.GRPC.Enable {
		if err := validateListenAddress("grpc.address", c.GRPC.Address); err != nil {
			return err
		}
		if c.GRPC.MaxRecvMsgSize <= 0 || c.GRPC.MaxSendMsgSize <= 0 {
			return fmt.Errorf("grpc max message sizes must be positive")
		}
	}

	return nil
}

func validateListenAddress(field, addr string) error {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}

	if strings.HasPrefix(trimmed, "unix://") {
		if len(strings.TrimPrefix(trimmed, "unix://")) == 0 {
			return fmt.Errorf("%s unix socket path is empty", field)
		}
		return nil
	}

	if strings.HasPrefix(trimmed, "tcp://") {
		trimmed = strings.TrimPrefix(trimmed, "tcp://")
	}

	host, port, err := net.SplitHostPort(trimmed)
	if err != nil {
		return fmt.Errorf("%s must be host:port (or tcp://host:port): %w", field, err)
	}
	if host == "" {
		return fmt.Errorf("%s host cannot be empty", field)
	}
	if port == "" {
		return fmt.Errorf("%s port cannot be empty", field)
	}
	if p, err := strconv.Atoi(port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("%s port must be in [1, 65535]", field)
	}

	return nil
}
