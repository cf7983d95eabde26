// Package registry resolves chart repository credentials for OCI registries.
package registry

import (
	"fmt"

	"github.com/instctl/instctl/pkg/errors"
	"github.com/instctl/instctl/pkg/schema/installable"
	"github.com/instctl/instctl/pkg/values"
)

// Credentials carries resolved registry authentication: either a
// username/password pair or a bearer token.
type Credentials struct {
	Username string
	Password string
	Token    string
}

// Login returns the username and password to pass to a registry login. Token
// credentials map to the "_token" username by OCI convention.
func (c *Credentials) Login() (string, string) {
	if c.Token != "" {
		return "_token", c.Token
	}
	return c.Username, c.Password
}

// Resolve resolves a repoCredentials spec against the values tree. A nil spec
// yields nil credentials, meaning no registry login is attempted. Literal
// fields win over their *Path counterparts.
func Resolve(spec *installable.RepoCredentials, tree values.Tree) (*Credentials, error) {
	if spec == nil {
		return nil, nil
	}

	creds := &Credentials{
		Username: spec.Username,
		Password: spec.Password,
		Token:    spec.Token,
	}

	var err error
	if creds.Username == "" && spec.UsernamePath != "" {
		if creds.Username, err = resolvePath(tree, spec.UsernamePath); err != nil {
			return nil, err
		}
	}
	if creds.Password == "" && spec.PasswordPath != "" {
		if creds.Password, err = resolvePath(tree, spec.PasswordPath); err != nil {
			return nil, err
		}
	}
	if creds.Token == "" && spec.TokenPath != "" {
		if creds.Token, err = resolvePath(tree, spec.TokenPath); err != nil {
			return nil, err
		}
	}

	if creds.Token == "" && (creds.Username == "" || creds.Password == "") {
		return nil, errors.CredentialError(
			"repoCredentials must resolve to a username/password pair or a token")
	}

	return creds, nil
}

func resolvePath(tree values.Tree, path string) (string, error) {
	value, err := values.LookupString(tree, path)
	if err != nil {
		return "", errors.CredentialError(
			fmt.Sprintf("credential path %q did not resolve to a scalar value", path))
	}
	return value, nil
}
