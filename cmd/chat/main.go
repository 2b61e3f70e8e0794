// Terminal chat client. Owns one conversation session and one query builder,
// driven against a running querychat server.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"querychat/internal/catalog"
	"querychat/internal/client"
	"querychat/internal/config"
	"querychat/internal/querybuilder"
	"querychat/internal/responder"
	"querychat/internal/session"
	"querychat/internal/transcript"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()
	ctx := context.Background()

	var rsp responder.Responder
	switch cfg.Responder {
	case "llm":
		llm, err := responder.NewLLM(cfg.OpenAIBaseURL, cfg.OpenAIToken, cfg.OpenAIModel)
		if err != nil {
			logger.Fatal("failed to initialize LLM responder", zap.Error(err))
		}
		rsp = llm
	default:
		static := responder.NewStatic()
		static.Delay = cfg.ReplyDelay
		rsp = static
	}

	sess := session.New(client.New(cfg.ServerURL), rsp, logger)
	builder := querybuilder.New(catalog.New(cfg.ServerURL), logger)

	if err := sess.Start(ctx); err != nil {
		logger.Fatal("failed to start conversation", zap.Error(err))
	}

	fmt.Println("querychat: /query pour construire une requête, /new pour une nouvelle conversation, /quit pour quitter")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit":
			return
		case line == "/new":
			if err := sess.Start(ctx); err != nil {
				fmt.Println("erreur:", err)
				continue
			}
			fmt.Println("nouvelle conversation", sess.ConversationID())
		case line == "/query":
			content, ok := runBuilder(ctx, builder, scanner)
			if !ok {
				continue
			}
			send(ctx, sess, content)
		case line != "":
			send(ctx, sess, line)
		}
	}
}

func send(ctx context.Context, sess *session.Session, content string) {
	if err := sess.Send(ctx, content); err != nil {
		fmt.Println("erreur:", err)
	}
	fmt.Print(transcript.Render(sess.Messages(), sess.Typing()))
}

// runBuilder walks the user through option choice, filters and toggles, and
// returns the rendered summary to send as a message.
func runBuilder(ctx context.Context, b *querybuilder.Builder, scanner *bufio.Scanner) (string, bool) {
	if err := b.Load(ctx); err != nil {
		fmt.Println("erreur:", err)
		return "", false
	}

	options := b.VisibleOptions()
	fmt.Println("Option de question:")
	for i, opt := range options {
		fmt.Printf("  %d. %s\n", i+1, opt.Name)
	}
	fmt.Print("option> ")
	if !scanner.Scan() {
		return "", false
	}
	idx, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || idx < 1 || idx > len(options) {
		fmt.Println("option invalide")
		return "", false
	}
	b.ChooseOption(options[idx-1].ID)

	fmt.Println(`Commandes: "lieu N", "article N", "filtre-lieu TYPE", "filtre-article CAT", "ok", "annuler"`)
	for {
		printCandidates(b)
		fmt.Print("requête> ")
		if !scanner.Scan() {
			return "", false
		}
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)

		switch {
		case line == "ok":
			_, summary, err := b.Build()
			if err != nil {
				fmt.Println("erreur:", err)
				continue
			}
			b.Cancel()
			return summary, true
		case line == "annuler":
			b.Cancel()
			return "", false
		case len(fields) == 2 && fields[0] == "lieu":
			toggleLocation(fields[1], b)
		case len(fields) == 2 && fields[0] == "article":
			toggleItem(fields[1], b)
		case len(fields) == 2 && fields[0] == "filtre-lieu":
			if err := b.SetLocationTypeFilter(ctx, fields[1]); err != nil {
				fmt.Println("erreur:", err)
			}
		case len(fields) == 2 && fields[0] == "filtre-article":
			if err := b.SetItemCategoryFilter(ctx, fields[1]); err != nil {
				fmt.Println("erreur:", err)
			}
		default:
			fmt.Println("commande inconnue")
		}
	}
}

func printCandidates(b *querybuilder.Builder) {
	selectedLocations := b.SelectedLocations()
	fmt.Printf("Lieux (types: %s):\n", strings.Join(b.LocationTypes(), ", "))
	for i, loc := range b.VisibleLocations() {
		fmt.Printf("  %s %d. %s\n", checkbox(selectedLocations, loc.ID), i+1, loc.Name)
	}

	selectedItems := b.SelectedItems()
	fmt.Printf("Articles (catégories: %s):\n", strings.Join(b.ItemCategories(), ", "))
	for i, item := range b.VisibleItems() {
		fmt.Printf("  %s %d. %s\n", checkbox(selectedItems, item.ID), i+1, item.Name)
	}
}

func checkbox(selected []string, id string) string {
	for _, v := range selected {
		if v == id {
			return "[x]"
		}
	}
	return "[ ]"
}

func toggleLocation(arg string, b *querybuilder.Builder) {
	locations := b.VisibleLocations()
	idx, err := strconv.Atoi(arg)
	if err != nil || idx < 1 || idx > len(locations) {
		fmt.Println("lieu invalide")
		return
	}
	b.ToggleLocation(locations[idx-1].ID)
}

func toggleItem(arg string, b *querybuilder.Builder) {
	items := b.VisibleItems()
	idx, err := strconv.Atoi(arg)
	if err != nil || idx < 1 || idx > len(items) {
		fmt.Println("article invalide")
		return
	}
	b.ToggleItem(items[idx-1].ID)
}
