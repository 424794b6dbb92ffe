package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"lolapi/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type authResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func main() {
	global := flag.NewFlagSet("lolapi", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	rest := []string{}
	if len(args) > 1 {
		sub = args[1]
		rest = args[2:]
	}

	api := &apiClient{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: *baseURL,
	}

	switch cmd {
	case "auth":
		handleAuth(ctx, api, *tokenPath, sub, rest)
	case "champion":
		handleChampion(ctx, api, sub, rest)
	case "review":
		handleReview(ctx, api, *tokenPath, sub, rest)
	case "sync":
		handleSync(sub, rest)
	case "events":
		handleEvents(*baseURL, sub, rest)
	case "export":
		handleExport(ctx, api, sub, rest)
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, api *apiClient, tokenPath, sub string, args []string) {
	switch sub {
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *email == "" || *password == "" {
			log.Fatal("email and password are required")
		}

		var resp authResponse
		payload := map[string]string{"email": *email, "password": *password}
		if err := api.do(ctx, http.MethodPost, "/api/auth/login", "", payload, &resp); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Printf("logged in, token valid until %s\n", resp.ExpiresAt)
	case "register":
		fs := flag.NewFlagSet("auth register", flag.ExitOnError)
		username := fs.String("username", "", "username")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *username == "" || *email == "" || *password == "" {
			log.Fatal("username, email, and password are required")
		}

		var resp authResponse
		payload := map[string]string{"username": *username, "email": *email, "password": *password}
		if err := api.do(ctx, http.MethodPost, "/api/auth/register", "", payload, &resp); err != nil {
			log.Fatalf("register failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("registered and logged in")
	case "logout":
		if token, err := readToken(tokenPath); err == nil && token != "" {
			// revokes the token server side too; a failure still clears the local copy
			if err := api.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil); err != nil {
				log.Printf("server logout: %v", err)
			}
		}
		if err := clearToken(tokenPath); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		fmt.Println("logged out")
	default:
		log.Fatal("usage: lolapi auth <login|register|logout>")
	}
}

func handleChampion(ctx context.Context, api *apiClient, sub string, args []string) {
	switch sub {
	case "list":
		var champs []models.Champion
		if err := api.do(ctx, http.MethodGet, "/api/champion", "", nil, &champs); err != nil {
			log.Fatalf("list champions: %v", err)
		}
		for _, c := range champs {
			fmt.Printf("%5d  %-16s %s\n", c.ID, c.Name, c.Title)
		}
	case "show":
		fs := flag.NewFlagSet("champion show", flag.ExitOnError)
		id := fs.Int64("id", 0, "champion id")
		name := fs.String("name", "", "champion name")
		info := fs.Bool("info", false, "include blurb, difficulty and tags")
		_ = fs.Parse(args)

		var path string
		switch {
		case *id > 0:
			path = "/api/champion/id/" + strconv.FormatInt(*id, 10)
		case *name != "":
			path = "/api/champion/name/" + url.PathEscape(*name)
		default:
			log.Fatal("-id or -name is required")
		}

		var champ models.Champion
		if err := api.do(ctx, http.MethodGet, path, "", nil, &champ); err != nil {
			log.Fatalf("show champion: %v", err)
		}
		printJSON(champ)

		if *info {
			var details models.ChampionInfo
			if err := api.do(ctx, http.MethodGet, fmt.Sprintf("/api/champion/id/%d/info", champ.ID), "", nil, &details); err != nil {
				log.Fatalf("champion info: %v", err)
			}
			printJSON(details)
		}
	default:
		log.Fatal("usage: lolapi champion <list|show>")
	}
}

func handleReview(ctx context.Context, api *apiClient, tokenPath, sub string, args []string) {
	switch sub {
	case "list":
		var reviews []models.Review
		if err := api.do(ctx, http.MethodGet, "/api/review", "", nil, &reviews); err != nil {
			log.Fatalf("list reviews: %v", err)
		}
		printReviews(reviews)
	case "show":
		fs := flag.NewFlagSet("review show", flag.ExitOnError)
		id := fs.Int64("id", 0, "review id")
		view := fs.Bool("view", false, "resolve username and champion")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("-id is required")
		}

		if *view {
			var v models.ReviewView
			if err := api.do(ctx, http.MethodGet, fmt.Sprintf("/api/review/view/id/%d", *id), "", nil, &v); err != nil {
				log.Fatalf("show review: %v", err)
			}
			printJSON(v)
			return
		}
		var r models.Review
		if err := api.do(ctx, http.MethodGet, fmt.Sprintf("/api/review/id/%d", *id), "", nil, &r); err != nil {
			log.Fatalf("show review: %v", err)
		}
		printJSON(r)
	case "champion":
		fs := flag.NewFlagSet("review champion", flag.ExitOnError)
		id := fs.Int64("id", 0, "champion id")
		name := fs.String("name", "", "champion name")
		_ = fs.Parse(args)

		var path string
		switch {
		case *id > 0:
			path = fmt.Sprintf("/api/review/review/champion/id/%d", *id)
		case *name != "":
			path = "/api/review/review/champion/name/" + url.PathEscape(*name)
		default:
			log.Fatal("-id or -name is required")
		}

		var reviews []models.Review
		if err := api.do(ctx, http.MethodGet, path, "", nil, &reviews); err != nil {
			log.Fatalf("champion reviews: %v", err)
		}
		printReviews(reviews)
	case "user":
		fs := flag.NewFlagSet("review user", flag.ExitOnError)
		username := fs.String("username", "", "username")
		_ = fs.Parse(args)
		if *username == "" {
			log.Fatal("-username is required")
		}

		var reviews []models.Review
		if err := api.do(ctx, http.MethodGet, "/api/review/"+url.PathEscape(*username)+"/reviews/", "", nil, &reviews); err != nil {
			log.Fatalf("user reviews: %v", err)
		}
		printReviews(reviews)
	case "create":
		fs := flag.NewFlagSet("review create", flag.ExitOnError)
		championID := fs.Int64("champion-id", 0, "champion id")
		championName := fs.String("champion", "", "champion name (instead of -champion-id)")
		rating := fs.Int("rating", 0, "rating 0-5")
		title := fs.String("title", "", "title (derived from the text when empty)")
		text := fs.String("text", "", "review text, at least 16 characters")
		_ = fs.Parse(args)

		token := mustToken(tokenPath)
		body := map[string]string{"title": *title, "text": *text}

		var path string
		switch {
		case *championName != "":
			path = fmt.Sprintf("/api/review/post/%s?rating=%d", url.PathEscape(*championName), *rating)
		case *championID > 0:
			path = fmt.Sprintf("/api/review?Rating=%d&ChampionId=%d", *rating, *championID)
		default:
			log.Fatal("-champion-id or -champion is required")
		}

		if err := api.do(ctx, http.MethodPost, path, token, body, nil); err != nil {
			log.Fatalf("create review: %v", err)
		}
		fmt.Println("review added")
	case "update":
		fs := flag.NewFlagSet("review update", flag.ExitOnError)
		id := fs.Int64("id", 0, "review id")
		rating := fs.Int("rating", -1, "new rating 0-5 (keeps the current one when omitted)")
		title := fs.String("title", "", "new title (keeps the current one when empty)")
		text := fs.String("text", "", "new review text, at least 16 characters")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("-id is required")
		}

		token := mustToken(tokenPath)
		body := map[string]string{"text": *text}
		if *title != "" {
			body["title"] = *title
		}
		path := fmt.Sprintf("/api/review/%d", *id)
		if *rating >= 0 {
			path += "?NewRating=" + strconv.Itoa(*rating)
		}

		var msg string
		if err := api.do(ctx, http.MethodPatch, path, token, body, &msg); err != nil {
			log.Fatalf("update review: %v", err)
		}
		fmt.Println(msg)
	case "delete":
		fs := flag.NewFlagSet("review delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "review id")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("-id is required")
		}

		if err := api.do(ctx, http.MethodDelete, fmt.Sprintf("/api/review/id/%d", *id), mustToken(tokenPath), nil, nil); err != nil {
			log.Fatalf("delete review: %v", err)
		}
		fmt.Println("review deleted")
	default:
		log.Fatal("usage: lolapi review <list|show|champion|user|create|update|delete>")
	}
}

func handleSync(sub string, args []string) {
	switch sub {
	case "listen":
		fs := flag.NewFlagSet("sync listen", flag.ExitOnError)
		addr := fs.String("addr", "127.0.0.1:7070", "TCP sync server address")
		pretty := fs.Bool("pretty", true, "pretty print JSON events")
		_ = fs.Parse(args)
		for {
			if err := runSyncTCP(*addr, *pretty); err != nil {
				log.Printf("[sync] disconnected: %v", err)
			}
			time.Sleep(1 * time.Second)
		}
	default:
		log.Fatal("usage: lolapi sync listen")
	}
}

func handleEvents(baseURL, sub string, args []string) {
	switch sub {
	case "subscribe":
		fs := flag.NewFlagSet("events subscribe", flag.ExitOnError)
		wsURL := fs.String("ws", "", "WebSocket URL (defaults to /ws on the API host)")
		_ = fs.Parse(args)

		endpoint := *wsURL
		if endpoint == "" {
			var err error
			endpoint, err = websocketURL(baseURL, "/ws")
			if err != nil {
				log.Fatalf("ws url: %v", err)
			}
		}
		if err := runWebSocket(endpoint); err != nil {
			log.Fatalf("subscribe failed: %v", err)
		}
	default:
		log.Fatal("usage: lolapi events subscribe")
	}
}

func handleExport(ctx context.Context, api *apiClient, sub string, args []string) {
	switch sub {
	case "json", "csv":
		fs := flag.NewFlagSet("export "+sub, flag.ExitOnError)
		out := fs.String("out", "data/reviews."+sub, "output path")
		_ = fs.Parse(args)

		var reviews []models.Review
		if err := api.do(ctx, http.MethodGet, "/api/review", "", nil, &reviews); err != nil {
			log.Fatalf("export %s failed: %v", sub, err)
		}

		write := writeJSON
		if sub == "csv" {
			write = writeCSV
		}
		if err := write(*out, reviews); err != nil {
			log.Fatalf("write %s failed: %v", sub, err)
		}
		log.Printf("exported %d reviews to %s", len(reviews), *out)
	default:
		log.Fatal("usage: lolapi export <json|csv>")
	}
}

func printReviews(reviews []models.Review) {
	if len(reviews) == 0 {
		fmt.Println("no reviews")
		return
	}
	for _, r := range reviews {
		fmt.Printf("#%-5d champion=%-4d rating=%d  %s\n", r.ID, r.ChampionID, r.Rating, r.Title)
	}
}

func printUsage() {
	fmt.Println("lolapi [-api URL] [-token PATH] <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth login|register|logout")
	fmt.Println("  champion list|show")
	fmt.Println("  review list|show|champion|user|create|update|delete")
	fmt.Println("  sync listen")
	fmt.Println("  events subscribe")
	fmt.Println("  export json|csv")
}
