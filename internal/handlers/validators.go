package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/nimbusbank/corebank/internal/core/domain"
)

// RegisterCustomValidators installs the domain enum validators used by binding
// tags on request DTOs. Call once at startup before routes are served.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("holdtype", func(fl validator.FieldLevel) bool {
		switch domain.HoldType(fl.Field().String()) {
		case domain.HoldUnclearedFunds, domain.HoldJudicialLien, domain.HoldCompliance,
			domain.HoldCardAuthorization, domain.HoldOverdraftReserve:
			return true
		}
		return false
	})

	v.RegisterValidation("holdpriority", func(fl validator.FieldLevel) bool {
		switch domain.HoldPriority(fl.Field().String()) {
		case domain.PriorityCritical, domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow:
			return true
		}
		return false
	})

	v.RegisterValidation("channel", func(fl validator.FieldLevel) bool {
		switch domain.Channel(fl.Field().String()) {
		case domain.ChannelTeller, domain.ChannelATM, domain.ChannelAgent, domain.ChannelOnline:
			return true
		}
		return false
	})
}
