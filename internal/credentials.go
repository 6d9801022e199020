package internal

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	pkgerrs "github.com/mastokit/masto/pkg/errors"
)

// Credentials holds the resolved client credentials for a session. ClientID,
// ClientSecret and AccessToken are literal values after resolution; only
// AccessToken changes later, when a login succeeds.
type Credentials struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
}

// ResolveCredentials turns the constructor arguments into literal
// credentials. If clientID names an existing file, its first two lines
// replace the client ID and secret and any explicitly supplied secret is
// ignored. Independently, if accessToken names an existing file, its first
// line replaces the token. A literal clientID without a secret is caller
// misuse.
func ResolveCredentials(clientID, clientSecret, accessToken string) (*Credentials, error) {
	creds := &Credentials{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AccessToken:  accessToken,
	}

	if isFile(clientID) {
		lines, err := readLines(clientID, 2)
		if err != nil {
			return nil, &pkgerrs.IllegalArgumentError{
				Message: fmt.Sprintf("could not read client credential file %s", clientID),
				Err:     err,
			}
		}
		creds.ClientID = lines[0]
		creds.ClientSecret = lines[1]
	} else if clientSecret == "" {
		return nil, &pkgerrs.IllegalArgumentError{
			Message: "specified client id directly, but did not supply secret",
		}
	}

	if accessToken != "" && isFile(accessToken) {
		lines, err := readLines(accessToken, 1)
		if err != nil {
			return nil, &pkgerrs.IllegalArgumentError{
				Message: fmt.Sprintf("could not read access token file %s", accessToken),
				Err:     err,
			}
		}
		creds.AccessToken = lines[0]
	}

	return creds, nil
}

// SaveAppCredentials persists a registered app's client ID and secret as two
// newline-terminated lines, the format ResolveCredentials reads back.
func SaveAppCredentials(path, clientID, clientSecret string) error {
	return os.WriteFile(path, []byte(clientID+"\n"+clientSecret+"\n"), 0o600)
}

// SaveAccessToken persists an access token as a single newline-terminated
// line, the format ResolveCredentials reads back.
func SaveAccessToken(path, accessToken string) error {
	return os.WriteFile(path, []byte(accessToken+"\n"), 0o600)
}

// isFile reports whether the value names an existing regular file, which is
// how a credential argument is distinguished from a literal value.
func isFile(value string) bool {
	info, err := os.Stat(value)
	return err == nil && info.Mode().IsRegular()
}

// readLines reads the first n lines of the file, stripped of trailing
// newlines.
func readLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	for len(lines) < n && scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) < n {
		return nil, fmt.Errorf("expected %d lines, file has %d", n, len(lines))
	}
	return lines, nil
}
