// Minimal end-to-end smoke test for the ideaforge HTTP API.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	baseURL   = getenv("API_URL", "http://localhost:8090")
	jwtSecret = getenv("JWT_SECRET", "")
	issueArg  = getenv("PRIORITY_ISSUE", "")
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	checkHealth()
	ideas := listIdeas()
	fmt.Printf("✓ /v1/ideas returned %d ideas\n", len(ideas))

	if jwtSecret != "" && issueArg != "" {
		issue, err := strconv.Atoi(issueArg)
		if err != nil {
			log.Fatalf("PRIORITY_ISSUE: %v", err)
		}
		setPriority(issue, 3)
		fmt.Printf("✓ priority set on issue #%d\n", issue)
	}

	fmt.Println("✓ all endpoints passed")
}

func checkHealth() {
	var resp struct{ Status string }
	doJSON("GET", "/healthz", "", nil, &resp, http.StatusOK)
	if resp.Status != "ok" {
		log.Fatalf("healthz: status %q", resp.Status)
	}
}

func listIdeas() []struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Votes  int    `json:"votes"`
} {
	var resp struct {
		Ideas []struct {
			Number int    `json:"number"`
			Title  string `json:"title"`
			Votes  int    `json:"votes"`
		} `json:"ideas"`
	}
	doJSON("GET", "/v1/ideas?count=5", "", nil, &resp, http.StatusOK)
	return resp.Ideas
}

func setPriority(issue, level int) {
	token := signToken()
	doJSON("POST", "/v1/priority", token, map[string]any{
		"issue": issue,
		"level": level,
	}, nil, http.StatusOK)
}

func signToken() string {
	claims := jwt.MapClaims{
		"sub": "smoke-test",
		"exp": time.Now().Add(5 * time.Minute).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	return signed
}

func doJSON(method, path, token string, body, out any, want int) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("%s %s encode: %v", method, path, err)
		}
	}
	req, _ := http.NewRequest(method, baseURL+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if res.StatusCode != want {
		log.Fatalf("%s %s: want %d got %d", method, path, want, res.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			log.Fatalf("%s %s decode: %v", method, path, err)
		}
	}
}
