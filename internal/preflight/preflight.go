// Package preflight verifies the AWS caller identity before any mutating
// command touches the stack, catching credential misconfigurations early.
package preflight

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// identityAPI is the subset of the STS API used by the check.
type identityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Compile-time check that the real SDK client satisfies identityAPI.
var _ identityAPI = (*sts.Client)(nil)

// CheckAccount resolves the caller identity and, when wantAccount is
// configured, fails if the caller's account differs — before any stack
// mutation is attempted.
func CheckAccount(ctx context.Context, api identityAPI, wantAccount string) error {
	out, err := api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fmt.Errorf("STS GetCallerIdentity: %w", err)
	}

	caller := aws.ToString(out.Account)
	if wantAccount != "" && caller != wantAccount {
		return fmt.Errorf(
			"AWS caller account %s does not match configured account %s; check your credentials or the account_id setting",
			caller, wantAccount,
		)
	}

	log.Printf("quarry-deploy: running as %s (account %s)", aws.ToString(out.Arn), caller)
	return nil
}
