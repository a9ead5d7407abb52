package auth

import "context"

func (h *GoogleHandler) SetFetchUser(f func(ctx context.Context, code string) (*GoogleUser, error)) {
	h.fetchUser = f
}

func (h *GoogleHandler) IssueState() (string, error) {
	return h.states.issue()
}
