package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParameterGetter is the subset of the SSM client used to resolve secrets.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ResolveSecrets fills secrets that are configured as SSM parameter names.
// Values already present in the environment win.
func ResolveSecrets(ctx context.Context, cfg *Config, client ParameterGetter) error {
	if cfg.JWTSecret != "" || cfg.JWTSecretParam == "" {
		return nil
	}
	if client == nil {
		return errors.New("JWT_SECRET_SSM_PARAM set but no SSM client available")
	}

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(cfg.JWTSecretParam),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("reading SSM parameter %s: %w", cfg.JWTSecretParam, err)
	}
	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return fmt.Errorf("SSM parameter %s is empty", cfg.JWTSecretParam)
	}

	cfg.JWTSecret = aws.ToString(out.Parameter.Value)
	return nil
}
