package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"interchat/client"
	"interchat/gateway"
)

// Exit codes for the tester application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the tester-side environment variables.
type Config struct {
	RelayURL  string `env:"RELAY_URL,default=http://localhost:8080"`
	Token     string `env:"RELAY_TOKEN,required=true"`
	Interchat string `env:"RELAY_INTERCHAT,default=es"`
	LogLevel  string `env:"LOG_LEVEL,default=INFO"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Tester error: %v\n", err)
	}
	os.Exit(code)
}

// run connects to the relay, prints every pushed event and forwards
// stdin lines as chat messages until Ctrl+C.
func run() (int, error) {
	// 1. Load configuration from environment variables.
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Discover the gateway and open the persistent channel.
	bootCtx, cancelBoot := context.WithTimeout(ctx, 10*time.Second)
	defer cancelBoot()

	gatewayURL, err := client.Bootstrap(bootCtx, config.RelayURL)
	if err != nil {
		return exitRuntime, fmt.Errorf("bootstrap failed: %w", err)
	}

	c, err := client.Connect(ctx, log, gatewayURL, config.Token, config.Interchat)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		log.Info("Closing connection...")
		_ = c.Close()
	}()

	color.Green.Printf(">>> Connected to %s (%s). Type to chat, Ctrl+C to quit.\n",
		gatewayURL, config.Interchat)

	// 4. Event reception loop.
	go func() {
		for evt := range c.Events {
			render(evt)
		}
		stop()
	}()

	// 5. Stdin send loop.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if err := c.Send(line); err != nil {
				log.Warn("send failed", "error", err)
				return
			}
		}
	}()

	<-ctx.Done()
	return exitOK, nil
}

func render(evt client.Event) {
	switch evt.Name {
	case gateway.EventMembersList:
		renderRoster(evt.Members)
	case gateway.EventMessagesList:
		color.Gray.Printf("-- %d message(s) of history --\n", len(evt.Messages))
	case gateway.EventMessageCreate:
		m := evt.Message
		at := time.UnixMilli(m.Timestamp).Format("15:04:05")
		if m.Author.System {
			color.Yellow.Printf("[%s] * %s\n", at, m.Content)
			return
		}
		color.New(color.FgCyan).Printf("[%s] %s: ", at, m.Author.Username)
		fmt.Println(m.Content)
	case gateway.EventMemberUpdate:
		u := evt.MemberUpdate
		if u.Action == gateway.ActionConnect {
			color.Green.Printf("++ %s joined\n", u.User.Username)
		} else {
			color.Red.Printf("-- %s left\n", u.User.Username)
		}
	}
}

func renderRoster(members []gateway.UserPayload) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Username", "Avatar"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, m := range members {
		table.Append([]string{m.ID, m.Username, m.Avatar})
	}
	color.Gray.Printf("-- %d member(s) online --\n", len(members))
	table.Render()
}
