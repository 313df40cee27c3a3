// Package scraper wraps the Python GoFundMe scraper behind a narrow
// search interface with bounded runtime and typed failures.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrUnavailable covers spawn failures and timeouts.
	ErrUnavailable = errors.New("scraper unavailable")
	// ErrParse covers unparseable scraper output.
	ErrParse = errors.New("scraper output parse error")
)

// Campaign mirrors one record of the scraper's JSON stdout.
type Campaign struct {
	Name        string `json:"Name"`
	URL         string `json:"URL"`
	Query       string `json:"Query"`
	GoalAmount  any    `json:"Goal Amount"`
	Balance     any    `json:"Balance"`
	Description string `json:"Summarized Description"`
}

type Client struct {
	pythonBin  string
	scriptPath string
	timeout    time.Duration
	log        zerolog.Logger

	// run is swapped in tests to avoid spawning a real interpreter.
	run func(ctx context.Context, query string) ([]byte, error)
}

func NewClient(pythonBin, scriptPath string, timeout time.Duration, log zerolog.Logger) *Client {
	c := &Client{
		pythonBin:  pythonBin,
		scriptPath: scriptPath,
		timeout:    timeout,
		log:        log,
	}
	c.run = c.runScript
	return c
}

func (c *Client) runScript(ctx context.Context, query string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.pythonBin, c.scriptPath, query)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			c.log.Warn().Str("stderr", stderr.String()).Msg("scraper stderr")
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Search runs the scraper for a query and returns the campaigns it
// found. The subprocess is killed at the configured timeout.
func (c *Client) Search(ctx context.Context, query string) ([]Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.run(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var campaigns []Campaign
	if err := json.Unmarshal(out, &campaigns); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return campaigns, nil
}
