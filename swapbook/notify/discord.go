package notify

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/disgo/webhook"
	"github.com/disgoorg/snowflake/v2"

	"github.com/swapbook/swapbook/swapbook/config"
	"github.com/swapbook/swapbook/swapbook/database/models"
)

type embedPoster interface {
	CreateEmbeds(embeds []discord.Embed, opts ...rest.RequestOpt) (*discord.Message, error)
}

// DiscordSink posts every notification as an embed to a Discord webhook.
type DiscordSink struct {
	client embedPoster
	closer func(ctx context.Context)
}

func NewDiscordSink(webhookID, token string) (*DiscordSink, error) {
	id, err := snowflake.Parse(webhookID)
	if err != nil {
		return nil, fmt.Errorf("invalid discord webhook id: %w", err)
	}
	client := webhook.New(id, token)
	return &DiscordSink{client: client, closer: client.Close}, nil
}

func newDiscordSink(client embedPoster) *DiscordSink {
	return &DiscordSink{client: client}
}

func (s *DiscordSink) Name() string { return "discord" }

func (s *DiscordSink) Send(ctx context.Context, n *models.Notification) error {
	if _, err := s.client.CreateEmbeds([]discord.Embed{buildEmbed(n)}, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to post discord embed: %w", err)
	}
	return nil
}

func (s *DiscordSink) Close(ctx context.Context) {
	if s.closer != nil {
		s.closer(ctx)
	}
}

func buildEmbed(n *models.Notification) discord.Embed {
	embed := discord.NewEmbedBuilder().
		SetTitle(fmt.Sprintf(config.DiscordEmbedTitleFmt, n.Status.String())).
		SetDescription(fmt.Sprintf("`%s` -> `%s`", n.OriginatorAddress, n.ReceiverAddress)).
		SetColor(config.DiscordEmbedColor).
		AddField("Swap", fmt.Sprintf("#%d", n.SwapID), true).
		AddField("Mode", n.SwapMode.String(), true).
		SetTimestamp(n.CreatedAt)

	if n.TradeID != "" {
		embed.AddField("Trade", n.TradeID, true)
	}
	if n.OpenTradeID != 0 {
		embed.AddField("Open trade", fmt.Sprintf("#%d", n.OpenTradeID), true)
	}
	return embed.Build()
}
