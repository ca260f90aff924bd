// Package testhelpers provides fixtures shared by package tests.
package testhelpers

import (
	"context"
	"fmt"
	"sync"

	"laminar.dev/laminar/internal/github"
)

// FakeForge is an in-memory github.Client. It serves reads from its PR
// table and records every mutation so tests can assert on exactly what
// an operation asked the forge to do.
type FakeForge struct {
	mu sync.Mutex

	Owner string
	Repo  string

	// PRs is the fake's state, keyed by number
	PRs map[int]*github.PullRequestInfo
	// NextNumber is assigned to the next created PR
	NextNumber int

	Created     []github.CreatePROptions
	Updated     map[int][]github.UpdatePROptions
	BaseBatches [][]github.BaseUpdate
	BodyBatches [][]github.BodyUpdate
	Comments    map[int][]string
	Closed      []int
	Merged      []int

	// CreateErr fails CreatePR when set
	CreateErr error
	// MergeErr fails MergePR when set
	MergeErr error
}

// NewFakeForge returns an empty forge for acme/widgets.
func NewFakeForge() *FakeForge {
	return &FakeForge{
		Owner:      "acme",
		Repo:       "widgets",
		PRs:        map[int]*github.PullRequestInfo{},
		NextNumber: 100,
		Updated:    map[int][]github.UpdatePROptions{},
		Comments:   map[int][]string{},
	}
}

// AddPR seeds an open PR into the forge's state.
func (f *FakeForge) AddPR(number int, head, base string) *github.PullRequestInfo {
	pr := &github.PullRequestInfo{
		Number:  number,
		NodeID:  fmt.Sprintf("node-%d", number),
		HTMLURL: fmt.Sprintf("https://github.com/%s/%s/pull/%d", f.Owner, f.Repo, number),
		State:   github.PRStateOpen,
		Head:    head,
		Base:    base,
	}
	f.PRs[number] = pr
	return pr
}

func (f *FakeForge) GetPR(ctx context.Context, number int) (*github.PullRequestInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pr, ok := f.PRs[number]
	if !ok {
		return nil, fmt.Errorf("PR #%d not found", number)
	}
	copied := *pr
	return &copied, nil
}

func (f *FakeForge) FindPRByHead(ctx context.Context, headRef string) (*github.PullRequestInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, pr := range f.PRs {
		if pr.Head == headRef && !pr.State.IsClosed() {
			copied := *pr
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *FakeForge) BatchGetPRs(ctx context.Context, numbers []int) (map[int]*github.PullRequestInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int]*github.PullRequestInfo, len(numbers))
	for _, n := range numbers {
		if pr, ok := f.PRs[n]; ok {
			copied := *pr
			out[n] = &copied
		}
	}
	return out, nil
}

func (f *FakeForge) CreatePR(ctx context.Context, opts github.CreatePROptions) (*github.PullRequestInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}

	f.Created = append(f.Created, opts)
	number := f.NextNumber
	f.NextNumber++

	state := github.PRStateOpen
	if opts.Draft {
		state = github.PRStateDraft
	}
	pr := &github.PullRequestInfo{
		Number:  number,
		NodeID:  fmt.Sprintf("node-%d", number),
		HTMLURL: fmt.Sprintf("https://github.com/%s/%s/pull/%d", f.Owner, f.Repo, number),
		Title:   opts.Title,
		Body:    opts.Body,
		State:   state,
		Head:    opts.Head,
		Base:    opts.Base,
	}
	f.PRs[number] = pr
	copied := *pr
	return &copied, nil
}

func (f *FakeForge) UpdatePR(ctx context.Context, number int, opts github.UpdatePROptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Updated[number] = append(f.Updated[number], opts)
	pr, ok := f.PRs[number]
	if !ok {
		return fmt.Errorf("PR #%d not found", number)
	}
	if opts.Title != nil {
		pr.Title = *opts.Title
	}
	if opts.Body != nil {
		pr.Body = *opts.Body
	}
	if opts.Base != nil {
		pr.Base = *opts.Base
	}
	return nil
}

func (f *FakeForge) BatchUpdateBases(ctx context.Context, updates []github.BaseUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BaseBatches = append(f.BaseBatches, updates)
	for _, u := range updates {
		if pr, ok := f.PRs[u.PRNumber]; ok {
			pr.Base = u.Base
		}
	}
	return nil
}

func (f *FakeForge) BatchUpdateBodies(ctx context.Context, updates []github.BodyUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BodyBatches = append(f.BodyBatches, updates)
	for _, u := range updates {
		if pr, ok := f.PRs[u.PRNumber]; ok {
			pr.Body = u.Body
		}
	}
	return nil
}

func (f *FakeForge) AddComment(ctx context.Context, number int, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Comments[number] = append(f.Comments[number], body)
	return nil
}

func (f *FakeForge) ClosePR(ctx context.Context, number int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pr, ok := f.PRs[number]
	if !ok {
		return fmt.Errorf("PR #%d not found", number)
	}
	pr.State = github.PRStateClosed
	f.Closed = append(f.Closed, number)
	return nil
}

func (f *FakeForge) MergePR(ctx context.Context, number int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MergeErr != nil {
		return f.MergeErr
	}
	pr, ok := f.PRs[number]
	if !ok {
		return fmt.Errorf("PR #%d not found", number)
	}
	pr.State = github.PRStateMerged
	f.Merged = append(f.Merged, number)
	return nil
}

func (f *FakeForge) GetOwnerRepo() (string, string) {
	return f.Owner, f.Repo
}
