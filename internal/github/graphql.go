package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	laminarerrors "laminar.dev/laminar/internal/errors"
)

// runGraphQL posts a query to the GraphQL endpoint and decodes the data
// payload into out. GraphQL-level errors are returned as one error.
func (c *apiClient) runGraphQL(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	requestBody := map[string]interface{}{
		"query": query,
	}
	if variables != nil {
		requestBody["variables"] = variables
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", graphqlEndpoint(c.hostname), bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create GraphQL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token})
	httpClient := oauth2.NewClient(ctx, ts)

	resp, err := httpClient.Do(req)
	if err != nil {
		return laminarerrors.NewConnectivityError(
			"GraphQL request",
			"Check network connectivity to the forge API.",
			err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read GraphQL response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return laminarerrors.NewConnectivityError(
			"GraphQL request",
			"Check authentication and API availability.",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to parse GraphQL response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		messages := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			messages[i] = e.Message
		}
		return fmt.Errorf("GraphQL request failed: %s", strings.Join(messages, "; "))
	}

	if out != nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode GraphQL data: %w", err)
		}
	}
	return nil
}

// graphqlPR is the PR shape selected by the batched queries.
type graphqlPR struct {
	Number      int    `json:"number"`
	ID          string `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	State       string `json:"state"`
	IsDraft     bool   `json:"isDraft"`
	Merged      bool   `json:"merged"`
	BaseRefName string `json:"baseRefName"`
	HeadRefName string `json:"headRefName"`
	HeadRefOid  string `json:"headRefOid"`
}

func (pr *graphqlPR) toInfo() *PullRequestInfo {
	return &PullRequestInfo{
		Number:  pr.Number,
		NodeID:  pr.ID,
		HTMLURL: pr.URL,
		Title:   pr.Title,
		Body:    pr.Body,
		State:   prStateFrom(pr.State, pr.IsDraft, pr.Merged),
		Base:    pr.BaseRefName,
		Head:    pr.HeadRefName,
		HeadSHA: pr.HeadRefOid,
	}
}

// BatchGetPRs fetches multiple PRs with one aliased GraphQL query.
func (c *apiClient) BatchGetPRs(ctx context.Context, numbers []int) (map[int]*PullRequestInfo, error) {
	results := make(map[int]*PullRequestInfo, len(numbers))
	if len(numbers) == 0 {
		return results, nil
	}

	var parts []string
	for idx, number := range numbers {
		parts = append(parts, fmt.Sprintf(`pr%d: pullRequest(number: %d) {
			number
			id
			url
			title
			body
			state
			isDraft
			merged
			baseRefName
			headRefName
			headRefOid
		}`, idx, number))
	}

	query := fmt.Sprintf(`query {
		repository(owner: %q, name: %q) {
			%s
		}
	}`, c.owner, c.repo, strings.Join(parts, "\n"))

	var data struct {
		Repository map[string]*graphqlPR `json:"repository"`
	}
	if err := c.runGraphQL(ctx, query, nil, &data); err != nil {
		return nil, laminarerrors.NewConnectivityError(
			"batch PR fetch",
			"Check connectivity and repository access.",
			err)
	}

	for idx, number := range numbers {
		if pr := data.Repository[fmt.Sprintf("pr%d", idx)]; pr != nil {
			results[number] = pr.toInfo()
		}
	}
	return results, nil
}

// getPRNodeIDs resolves PR numbers to GraphQL node IDs in one query.
func (c *apiClient) getPRNodeIDs(ctx context.Context, numbers []int) (map[int]string, error) {
	ids := make(map[int]string, len(numbers))
	if len(numbers) == 0 {
		return ids, nil
	}

	var parts []string
	for idx, number := range numbers {
		parts = append(parts, fmt.Sprintf(`pr%d: pullRequest(number: %d) { number id }`, idx, number))
	}

	query := fmt.Sprintf(`query {
		repository(owner: %q, name: %q) {
			%s
		}
	}`, c.owner, c.repo, strings.Join(parts, "\n"))

	var data struct {
		Repository map[string]*struct {
			Number int    `json:"number"`
			ID     string `json:"id"`
		} `json:"repository"`
	}
	if err := c.runGraphQL(ctx, query, nil, &data); err != nil {
		return nil, err
	}

	for idx, number := range numbers {
		if pr := data.Repository[fmt.Sprintf("pr%d", idx)]; pr != nil {
			ids[number] = pr.ID
		}
	}
	return ids, nil
}

// BatchUpdateBases retargets multiple PRs in one aliased mutation. Aliases
// preserve the given order, which matters for keeping the chain valid.
func (c *apiClient) BatchUpdateBases(ctx context.Context, updates []BaseUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	numbers := make([]int, len(updates))
	for i, u := range updates {
		numbers[i] = u.PRNumber
	}
	nodeIDs, err := c.getPRNodeIDs(ctx, numbers)
	if err != nil {
		return laminarerrors.NewConnectivityError(
			"resolving PR node IDs",
			"Check connectivity and repository access.",
			err)
	}

	var parts []string
	for idx, u := range updates {
		nodeID, ok := nodeIDs[u.PRNumber]
		if !ok {
			return fmt.Errorf("no node ID for PR #%d", u.PRNumber)
		}
		parts = append(parts, fmt.Sprintf(`update%d: updatePullRequest(input: {
			pullRequestId: %q
			baseRefName: %q
		}) {
			pullRequest { number }
		}`, idx, nodeID, u.Base))
	}

	mutation := fmt.Sprintf("mutation {\n%s\n}", strings.Join(parts, "\n"))
	if err := c.runGraphQL(ctx, mutation, nil, nil); err != nil {
		return laminarerrors.NewConnectivityError(
			"batched base update",
			"Check that the target branches exist on the remote.",
			err)
	}
	return nil
}

// BatchUpdateBodies rewrites multiple PR bodies in one aliased mutation.
func (c *apiClient) BatchUpdateBodies(ctx context.Context, updates []BodyUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	numbers := make([]int, len(updates))
	for i, u := range updates {
		numbers[i] = u.PRNumber
	}
	nodeIDs, err := c.getPRNodeIDs(ctx, numbers)
	if err != nil {
		return laminarerrors.NewConnectivityError(
			"resolving PR node IDs",
			"Check connectivity and repository access.",
			err)
	}

	variables := make(map[string]interface{}, len(updates))
	var parts []string
	for idx, u := range updates {
		nodeID, ok := nodeIDs[u.PRNumber]
		if !ok {
			return fmt.Errorf("no node ID for PR #%d", u.PRNumber)
		}
		varName := fmt.Sprintf("body%d", idx)
		variables[varName] = u.Body
		parts = append(parts, fmt.Sprintf(`update%d: updatePullRequest(input: {
			pullRequestId: %q
			body: $%s
		}) {
			pullRequest { number }
		}`, idx, nodeID, varName))
	}

	var decls []string
	for idx := range updates {
		decls = append(decls, fmt.Sprintf("$body%d: String!", idx))
	}
	mutation := fmt.Sprintf("mutation(%s) {\n%s\n}", strings.Join(decls, ", "), strings.Join(parts, "\n"))

	if err := c.runGraphQL(ctx, mutation, variables, nil); err != nil {
		return laminarerrors.NewConnectivityError(
			"batched body update",
			"Check connectivity and repository access.",
			err)
	}
	return nil
}
