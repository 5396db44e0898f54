package common

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type stubSTS struct {
	account *string
	err     error
}

func (s stubSTS) GetCallerIdentity(_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &sts.GetCallerIdentityOutput{Account: s.account}, nil
}

func factoryFor(s stubSTS) ClientFactory {
	return func(aws.Config) *ClientSet { return &ClientSet{STS: s} }
}

func TestLoader_Load(t *testing.T) {
	creds := StaticCredentials{AccessKeyID: "AKIA", SecretAccessKey: "secret"}

	t.Run("resolves account and defaults region", func(t *testing.T) {
		acct, err := NewLoaderWithFactory(factoryFor(stubSTS{account: aws.String("123456789012")})).
			Load(context.Background(), creds)
		if err != nil {
			t.Fatal(err)
		}
		if acct.AccountID != "123456789012" {
			t.Errorf("AccountID = %q", acct.AccountID)
		}
		if acct.Region != DefaultRegion || acct.Config.Region != DefaultRegion {
			t.Errorf("Region = %q / %q; want %q", acct.Region, acct.Config.Region, DefaultRegion)
		}
		if got := acct.ForRegion("eu-west-1").Region; got != "eu-west-1" {
			t.Errorf("ForRegion = %q", got)
		}
		if acct.Config.Region != DefaultRegion {
			t.Error("ForRegion must not mutate the account config")
		}
	})

	t.Run("STS failure is returned", func(t *testing.T) {
		_, err := NewLoaderWithFactory(factoryFor(stubSTS{err: errors.New("InvalidClientTokenId")})).
			Load(context.Background(), creds)
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("nil account is an error", func(t *testing.T) {
		_, err := NewLoaderWithFactory(factoryFor(stubSTS{})).Load(context.Background(), creds)
		if err == nil {
			t.Fatal("expected error")
		}
	})
}
