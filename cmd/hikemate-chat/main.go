// Command hikemate-chat is a minimal terminal client for the HikeMate
// realtime core: it connects to the broker, prints presence and friend
// request activity, and drives the chat handshake from stdin.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hikemate/realtime"
	"github.com/hikemate/realtime/apiclient"
	"github.com/hikemate/realtime/auth"
	"github.com/hikemate/realtime/chat"
	"github.com/hikemate/realtime/config"
	"github.com/hikemate/realtime/friendreq"
	"github.com/hikemate/realtime/transport"
)

func main() {
	username := flag.String("username", "", "local username (defaults to the token subject)")
	friends := flag.String("friends", "", "comma-separated friend usernames to watch")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("loading config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	self := *username
	var tokens auth.TokenSource
	if cfg.Token != "" {
		if src, err := auth.NewJWTSource(cfg.Token); err == nil {
			tokens = src
			if self == "" {
				self = src.Username()
			}
		} else {
			logrus.WithField("error", err).Warn("token is not a JWT, using it as-is")
			tokens = auth.StaticSource(cfg.Token)
		}
	}
	if self == "" {
		logrus.Fatal("username required: pass -username or a token with a subject claim")
	}

	var tr transport.Transport
	if cfg.RedisAddr != "" {
		tr = transport.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	} else {
		token := ""
		if tokens != nil {
			if t, err := tokens.Token(); err == nil {
				token = auth.Bearer(t)
			}
		}
		tr = transport.NewWebSocket(transport.Config{
			URL:            cfg.BrokerURL,
			Token:          token,
			ReconnectDelay: cfg.ReconnectDelay,
		})
	}

	var api *apiclient.Client
	if tokens != nil {
		api = apiclient.New(cfg.APIBaseURL, tokens)
	}

	client, err := realtime.New(realtime.Options{
		Username:  self,
		Friends:   splitList(*friends),
		Transport: tr,
		API:       api,
		Tokens:    tokens,
	})
	if err != nil {
		logrus.Fatalf("creating client: %v", err)
	}

	client.OnPresenceChange(func(friend string, online bool) {
		if online {
			fmt.Printf("* %s is online\n", friend)
		} else {
			fmt.Printf("* %s went offline\n", friend)
		}
	})
	client.OnFriendRequest(func(req *friendreq.Request) {
		fmt.Printf("* %s wants to be your friend (/resolve %s accept|decline)\n", req.Requester, req.ID)
	})
	client.OnChatInvite(func(inviter string) {
		fmt.Printf("* %s invites you to chat (/accept or /decline)\n", inviter)
	})
	client.OnInviteDeclined(func(peer string, busy bool) {
		if busy {
			fmt.Printf("* %s is in another chat\n", peer)
		} else {
			fmt.Printf("* %s is unavailable\n", peer)
		}
	})
	client.OnChatOpened(func(peer string) {
		fmt.Printf("* chat with %s started\n", peer)
	})
	client.OnChatMessage(func(msg chat.Message) {
		fmt.Printf("%s: %s\n", msg.Sender, msg.Content)
	})
	client.OnChatEnded(func(peer string, reason realtime.EndReason) {
		fmt.Printf("* chat with %s ended (%s)\n", peer, reason)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := client.Connect(ctx); err != nil {
		logrus.Fatalf("connecting: %v", err)
	}
	defer client.Close()

	fmt.Printf("connected as %s (type /help for commands)\n", self)
	go repl(client)
	<-ctx.Done()
}

func repl(client *realtime.Client) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			if _, err := client.Send(line); err != nil {
				fmt.Printf("! %v\n", err)
			}
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "/help":
			fmt.Println("/friends /requests /add <user> /resolve <id> accept|decline /invite <user> /accept /decline /end /quit")
		case "/friends":
			fmt.Printf("online: %s\n", strings.Join(client.OnlineFriends(), ", "))
		case "/requests":
			for _, req := range client.PendingRequests() {
				fmt.Printf("%s from %s\n", req.ID, req.Requester)
			}
		case "/add":
			if len(fields) < 2 {
				fmt.Println("usage: /add <user>")
				continue
			}
			report(client.SubmitFriendRequest(fields[1]))
		case "/resolve":
			if len(fields) < 3 {
				fmt.Println("usage: /resolve <id> accept|decline")
				continue
			}
			decision := friendreq.StatusDeclined
			if fields[2] == "accept" {
				decision = friendreq.StatusAccepted
			}
			report(client.ResolveFriendRequest(fields[1], decision))
		case "/invite":
			if len(fields) < 2 {
				fmt.Println("usage: /invite <user>")
				continue
			}
			report(client.Invite(fields[1]))
		case "/accept":
			report(client.AcceptInvite())
		case "/decline":
			report(client.DeclineInvite())
		case "/end":
			report(client.EndChat())
		case "/quit":
			client.Close()
			os.Exit(0)
		default:
			fmt.Printf("unknown command %s\n", fields[0])
		}
	}
}

func report(err error) {
	if err != nil {
		fmt.Printf("! %v\n", err)
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
