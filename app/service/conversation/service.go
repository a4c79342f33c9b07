package conversation

import (
	"agencychat/app/config"

	"github.com/samber/do"
)

// Service builds one Engine per chat session from the shared collaborators.
type Service struct {
	cfg       *config.Config
	generator Generator
	notifier  Notifier
	fallback  *FallbackPolicy
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewService(
		cfg,
		do.MustInvoke[Generator](di),
		do.MustInvoke[Notifier](di),
	), nil
}

func NewService(cfg *config.Config, generator Generator, notifier Notifier) *Service {
	contacts := cfg.Chat.Contacts

	return &Service{
		cfg:       cfg,
		generator: generator,
		notifier:  notifier,
		fallback: NewFallbackPolicy(Contacts{
			General:   contacts.General,
			Urgent:    contacts.Urgent,
			Phone:     contacts.Phone,
			Portfolio: contacts.Portfolio,
		}),
	}
}

func (s *Service) NewEngine(client string) *Engine {
	return NewEngine(s.generator, s.fallback,
		WithNotifier(s.notifier),
		WithPersona(Persona{
			AssistantName: s.cfg.Chat.AssistantName,
			AgencyName:    s.cfg.Chat.AgencyName,
			Contact:       s.cfg.Chat.Contacts.General,
		}),
		WithSource(s.cfg.Chat.Source),
		WithClient(client),
	)
}

func (s *Service) Fallback() *FallbackPolicy {
	return s.fallback
}
