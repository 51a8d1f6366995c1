package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"police-security-bot/internal/domain"
	"police-security-bot/internal/infra/logging"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":            r.handleStartCommand,
		"help":             r.handleHelpCommand,
		"register_admin":   r.handleRegisterAdminCommand,
		"unregister_admin": r.handleUnregisterAdminCommand,
		"list_admins":      r.handleListAdminsCommand,
	}
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message, r.translator.T("welcome_message"))
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message, r.translator.T("help_message"))
}

// handleRegisterAdminCommand registers the chat, not the sender, so a group
// can receive alerts too.
func (r *RealTelegramBotAdapter) handleRegisterAdminCommand(ctx context.Context, message *tgbotapi.Message) error {
	secret := strings.TrimSpace(message.CommandArguments())
	if secret == "" {
		return r.reply(ctx, message, r.translator.T("usage_register_admin"))
	}

	if r.limiter != nil {
		allowed, err := r.limiter.Allow(ctx, commandKey(message.Chat.ID, "register_admin"), r.cfg.RegisterAttempts, r.cfg.RegisterWindow)
		if err != nil {
			logging.With(ctx, r.log).Warn().Err(err).Msg("rate limit check failed")
		} else if !allowed {
			return r.reply(ctx, message, r.translator.T("register_rate_limited"))
		}
	}

	err := r.registry.Register(ctx, message.Chat.ID, secret)
	switch {
	case err == nil:
		return r.reply(ctx, message, r.translator.T("register_success"))
	case errors.Is(err, domain.ErrInvalidSecret):
		return r.reply(ctx, message, r.translator.T("register_invalid_secret"))
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return r.reply(ctx, message, r.translator.T("register_already"))
	default:
		logging.With(ctx, r.log).Error().Err(err).Int64("chat_id", message.Chat.ID).Msg("admin registration failed")
		return r.reply(ctx, message, r.translator.T("error_generic"))
	}
}

func (r *RealTelegramBotAdapter) handleUnregisterAdminCommand(ctx context.Context, message *tgbotapi.Message) error {
	err := r.registry.Unregister(ctx, message.Chat.ID)
	switch {
	case err == nil:
		return r.reply(ctx, message, r.translator.T("unregister_success"))
	case errors.Is(err, domain.ErrNotFound):
		return r.reply(ctx, message, r.translator.T("unregister_not_admin"))
	default:
		logging.With(ctx, r.log).Error().Err(err).Int64("chat_id", message.Chat.ID).Msg("admin removal failed")
		return r.reply(ctx, message, r.translator.T("error_generic"))
	}
}

func (r *RealTelegramBotAdapter) handleListAdminsCommand(ctx context.Context, message *tgbotapi.Message) error {
	ids, err := r.registry.List(ctx)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("failed to read admin registry")
		return r.reply(ctx, message, r.translator.T("error_generic"))
	}
	if len(ids) == 0 {
		return r.reply(ctx, message, r.translator.T("list_admins_empty"))
	}
	lines := make([]string, len(ids))
	for i, id := range ids {
		lines[i] = strconv.FormatInt(id, 10)
	}
	return r.reply(ctx, message, r.translator.T("list_admins_header", strings.Join(lines, "\n")))
}

func commandKey(chatID int64, command string) string {
	return fmt.Sprintf("rate_limit:%d:%s", chatID, command)
}
