//go:build !integration

package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"telegram-ai-relay/internal/application"
	"telegram-ai-relay/internal/domain/model"
	"telegram-ai-relay/internal/infra/i18n"
	"telegram-ai-relay/internal/usecase"
)

// simple mock chat usecase implementing the methods used by BotFacade
type mockChatUC struct {
	resets   []string
	resetErr error
	inbound  []usecase.Inbound
	current  string
}

func (m *mockChatUC) HandleText(ctx context.Context, in usecase.Inbound) (usecase.Outcome, error) {
	m.inbound = append(m.inbound, in)
	return usecase.OutcomeAnswered, nil
}

func (m *mockChatUC) ResetSession(ctx context.Context, userID int64, reason string) error {
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resets = append(m.resets, reason)
	return nil
}

func (m *mockChatUC) CurrentModel() string { return m.current }

func newFacade(t *testing.T, uc *mockChatUC) *application.BotFacade {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	return application.NewBotFacade(uc, model.DefaultCatalog(), tr, model.DefaultHistoryLimit)
}

func TestHandleStartAndClear(t *testing.T) {
	ctx := context.Background()
	uc := &mockChatUC{}
	f := newFacade(t, uc)

	if msg, err := f.HandleStart(ctx, 1); err != nil || msg == "" {
		t.Fatalf("HandleStart: %q %v", msg, err)
	}
	if msg, err := f.HandleClear(ctx, 1); err != nil || msg == "" {
		t.Fatalf("HandleClear: %q %v", msg, err)
	}
	if strings.Join(uc.resets, ",") != "start,clear" {
		t.Errorf("unexpected resets: %v", uc.resets)
	}

	uc.resetErr = errors.New("boom")
	if _, err := f.HandleClear(ctx, 1); err == nil {
		t.Error("expected reset error to surface")
	}
}

func TestHandleHelpMentionsLimit(t *testing.T) {
	f := newFacade(t, &mockChatUC{})
	msg, _ := f.HandleHelp(context.Background())
	if !strings.Contains(msg, "10") {
		t.Errorf("help should mention the history limit: %q", msg)
	}
}

func TestHandleModels(t *testing.T) {
	f := newFacade(t, &mockChatUC{current: "google/gemma-7b-it"})
	msg, err := f.HandleModels(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range model.DefaultCatalogEntries() {
		if !strings.Contains(msg, "`"+e.ID+"`") {
			t.Errorf("catalog text lacks %s", e.ID)
		}
	}
	if strings.Index(msg, "DeepSeek") > strings.Index(msg, "OpenAI") {
		t.Error("vendors should keep catalog order")
	}
	if !strings.Contains(msg, "google/gemma-7b-it`") || !strings.Contains(msg, "/change_model") {
		t.Errorf("missing current model or footer: %q", msg)
	}
}

func TestHandleChangeModel(t *testing.T) {
	f := newFacade(t, &mockChatUC{})
	prompt, rows, err := f.HandleChangeModel(context.Background())
	if err != nil || prompt == "" {
		t.Fatalf("unexpected result: %q %v", prompt, err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 featured rows, got %d", len(rows))
	}
	for _, r := range rows {
		if len(r) != 1 {
			t.Errorf("one button per row expected, got %v", r)
		}
	}
}

func TestHandleTextForwards(t *testing.T) {
	uc := &mockChatUC{}
	f := newFacade(t, uc)
	if err := f.HandleText(context.Background(), 3, 4, "/unknown"); err != nil {
		t.Fatal(err)
	}
	if len(uc.inbound) != 1 || uc.inbound[0] != (usecase.Inbound{UserID: 3, ChatID: 4, Text: "/unknown"}) {
		t.Errorf("unexpected inbound: %+v", uc.inbound)
	}
}

var _ application.ChatUseCaseIface = (*mockChatUC)(nil)
