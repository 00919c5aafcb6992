package main

import (
	"bufio"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	assistantapp "craft_marketplace_service/internal/assistant/app"
	"craft_marketplace_service/internal/client"
	chatdomain "craft_marketplace_service/internal/chat/domain"
	"craft_marketplace_service/pkg/config"
	"craft_marketplace_service/pkg/localstore"
	"craft_marketplace_service/pkg/logger"
)

// headless chat client runtime; identity and room come from the
// environment so the same binary serves manual testing and demos
func main() {
	logger.Log = logger.Initialize("chat_client", config.EnvConfig.ClientLogPath)
	cfg := config.LoadConfig[config.Client]("chat_client", os.Getenv("CHAT_CLIENT_YAML"))

	token := os.Getenv("CHAT_TOKEN")
	userID := os.Getenv("CHAT_USER_ID")
	userName := os.Getenv("CHAT_USER_NAME")
	roomID := os.Getenv("CHAT_ROOM_ID")
	if token == "" || userID == "" {
		log.Fatal("CHAT_TOKEN and CHAT_USER_ID are required")
	}

	store, err := localstore.Open(filepath.Join(cfg.StateDir, "client_state.json"))
	if err != nil {
		log.Fatalf("failed to open client state: %v", err)
	}

	api := client.NewRestClient(cfg.ServerURL, token, cfg.HTTPTimeout)
	bus := client.NewBus()
	notifications := client.NewNotifications(store, bus)

	roomList := client.NewRoomList(api, userID)
	roomList.Start()
	defer roomList.Stop()

	messages := client.NewMessageStore(userID)
	messages.OnForeignMessage = func(id string) {
		if err := roomList.MarkRead(id); err != nil {
			log.Printf("mark read failed: %v", err)
		}
	}

	eligibility := client.NewEligibilityMachine(api, bus)
	defer eligibility.Close()

	channel := client.NewChannel(cfg.WSURL, token)
	typing := client.NewTypingTracker(userName)
	typing.Emit = channel.PublishTyping

	channel.OnMessage = func(msg chatdomain.ChatMessage) {
		messages.ApplyPush(msg)
		roomList.HandlePush(msg)
		eligibility.NotifyMessageCountChanged()
	}
	channel.OnTyping = typing.HandleRemote
	channel.OnStateChange = func(state client.ChannelState) {
		log.Printf("channel state: %s", state)
	}
	defer channel.Close()

	assistant := assistantapp.NewSession(cfg.AssistantURL, store, cfg.HTTPTimeout)
	if !assistant.Health() {
		log.Printf("assistant unavailable at %s", cfg.AssistantURL)
	}

	if roomID != "" {
		messages.SetRoom(roomID, true)
		roomList.SetActiveRoom(roomID)
		eligibility.SetRoom(roomID)

		if page, err := api.GetMessages(roomID, 0, 50); err != nil {
			log.Printf("history load failed: %v", err)
		} else {
			messages.LoadInitial(page)
		}
		channel.Connect(roomID)

		// stdin lines become messages; socket when connected, REST
		// fallback otherwise
		conversation := client.NewConversation(api, channel, messages, roomID)
		go func() {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				typing.Keystroke()
				if err := conversation.Send(chatdomain.SendMessageRequest{Content: line}); err != nil {
					log.Printf("send failed: %v", err)
				}
				typing.Stop()
			}
		}()
	}

	log.Printf("chat client running as %s (%d accepted-connection notifications)", userID, len(notifications.List()))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
}
