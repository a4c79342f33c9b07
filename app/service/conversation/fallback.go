package conversation

import (
	"fmt"

	"github.com/elliotchance/pie/v2"
)

type Topic string

const (
	TopicUrgent     Topic = "urgent"
	TopicPricing    Topic = "pricing"
	TopicServices   Topic = "services"
	TopicOnboarding Topic = "onboarding"
	TopicTimeline   Topic = "timeline"
	TopicPortfolio  Topic = "portfolio"
	TopicContact    Topic = "contact"
	TopicDefault    Topic = "default"
)

// Contacts are the fixed identifiers embedded into canned replies.
type Contacts struct {
	General   string
	Urgent    string
	Phone     string
	Portfolio string
}

type route struct {
	topic    Topic
	keywords []string
	message  string
}

// FallbackPolicy maps an utterance to a canned reply when generation can't be trusted.
type FallbackPolicy struct {
	routes         []route
	defaultMessage string
	outageMessage  string
	stuckMessage   string
}

func NewFallbackPolicy(contacts Contacts) *FallbackPolicy {
	phone := ""
	if contacts.Phone != "" {
		phone = fmt.Sprintf(" or call us at %s", contacts.Phone)
	}

	portfolio := "on our website"
	if contacts.Portfolio != "" {
		portfolio = "at " + contacts.Portfolio
	}

	return &FallbackPolicy{
		// order matters: first match wins
		routes: []route{
			{
				topic:    TopicUrgent,
				keywords: []string{"urgent", "emergency", "asap", "immediately", "critical", "help me now"},
				message: fmt.Sprintf("I understand this is urgent. Our team has been alerted and will get back to you "+
					"as fast as possible, usually within the hour. For immediate help email %s%s.",
					contacts.Urgent, phone),
			},
			{
				topic:    TopicPricing,
				keywords: []string{"price", "pricing", "cost", "how much", "budget", "quote", "rate"},
				message: fmt.Sprintf("Our projects usually range from $2,000 for a landing page to $25,000+ for "+
					"custom web applications. Every project is scoped individually, so email %s for a free, "+
					"no-obligation quote.", contacts.General),
			},
			{
				topic:    TopicServices,
				keywords: []string{"service", "what do you do"},
				message: "We design and build websites, web applications and e-commerce stores, and we help " +
					"with branding, UI/UX design, SEO and ongoing maintenance. Tell me a bit about your project " +
					"and I'll point you in the right direction.",
			},
			{
				topic:    TopicOnboarding,
				keywords: []string{"start", "begin", "how"},
				message: fmt.Sprintf("Getting started is simple: share a few details about your project, we schedule "+
					"a free discovery call, and then send you a proposal with scope, timeline and price. "+
					"Email %s to kick things off.", contacts.General),
			},
			{
				topic:    TopicTimeline,
				keywords: []string{"time", "timeline", "long"},
				message: "A typical website takes 4 to 8 weeks from kickoff to launch. Larger web applications " +
					"take 2 to 4 months. We agree on a detailed schedule before any work begins.",
			},
			{
				topic:    TopicPortfolio,
				keywords: []string{"portfolio", "work", "examples"},
				message: fmt.Sprintf("You can browse our recent projects %s. We're happy to share case studies "+
					"relevant to your industry as well.", portfolio),
			},
			{
				topic:    TopicContact,
				keywords: []string{"contact", "email", "phone"},
				message:  fmt.Sprintf("You can reach our team at %s%s. We reply within one business day.", contacts.General, phone),
			},
		},
		defaultMessage: fmt.Sprintf("Thanks for your message! I'm not able to answer that right now, but our team "+
			"can help. Email %s for general questions, or %s if something needs attention right away.",
			contacts.General, contacts.Urgent),
		outageMessage: fmt.Sprintf("Our assistant is having technical difficulties at the moment. Please email %s "+
			"and a member of our team will get back to you shortly.", contacts.General),
		stuckMessage: fmt.Sprintf("I'm having trouble generating a fresh response right now. Could you rephrase "+
			"your question, or email %s so our team can help directly?", contacts.General),
	}
}

// Topic reports which route the utterance falls into.
func (p *FallbackPolicy) Topic(utterance string) Topic {
	i := p.match(utterance)
	if i < 0 {
		return TopicDefault
	}

	return p.routes[i].topic
}

// Fallback returns the canned reply for the utterance. It is never empty.
func (p *FallbackPolicy) Fallback(utterance string) string {
	i := p.match(utterance)
	if i < 0 {
		return p.defaultMessage
	}

	return p.routes[i].message
}

// Outage is returned once generation failures look systemic.
func (p *FallbackPolicy) Outage() string {
	return p.outageMessage
}

// Stuck is returned when the model keeps repeating itself.
func (p *FallbackPolicy) Stuck() string {
	return p.stuckMessage
}

func (p *FallbackPolicy) match(utterance string) int {
	return pie.FindFirstUsing(p.routes, func(r route) bool {
		return containsAny(utterance, r.keywords)
	})
}
