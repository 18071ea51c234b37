package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"gitlab.com/dirk.krummacker/contact-book/pkg/model"
)

const serverPort = 8080

// Usage example on the command line:
// > go run main.go
func main() {
	fmt.Println()
	fmt.Println("  Elements      POST       PUT       GET    DELETE ")
	fmt.Println("---------------------------------------------------")
	sizes := []int{100, 500, 1000, 5000}
	updateBody, err := json.Marshal(model.ContactUpdate{AdditionalInfo: ptr("Forum Romanum")})
	if err != nil {
		panic(err)
	}
	for _, loops := range sizes {
		identifiers := make([]string, 0, loops)
		for i := 0; i < loops; i++ {
			identifiers = append(identifiers, fmt.Sprintf("Marcus Antonius %d", i))
		}
		fmt.Printf("%10d", loops)
		{
			// POST requests
			var duration int64
			for i, identifier := range identifiers {
				duration += sendPostRequest(newContact(identifier, i))
			}
			fmt.Printf("%10d", duration/int64(loops*1000))
		}
		{
			// PUT requests
			f := func(identifier string) int64 {
				return sendRequestForID(identifier, http.MethodPut, bytes.NewReader(updateBody))
			}
			callInLoop(identifiers, f)
		}
		{
			// GET requests
			f := func(identifier string) int64 {
				return sendRequestForID(identifier, http.MethodGet, nil)
			}
			callInLoop(identifiers, f)
		}
		{
			// DELETE requests
			f := func(identifier string) int64 {
				return sendRequestForID(identifier, http.MethodDelete, nil)
			}
			callInLoop(identifiers, f)
		}
		fmt.Println()
	}
}

func ptr(s string) *string {
	return &s
}

// newContact returns a valid contact whose phone number is derived from i.
func newContact(identifier string, i int) model.Contact {
	return model.Contact{
		Identifier: identifier,
		Name:       "Marcus Antonius",
		Phone:      fmt.Sprintf("555%07d", i),
		Email:      "marcus.antonius@example.org",
	}
}

func callInLoop(identifiers []string, f func(identifier string) int64) {
	shuffled := make([]string, len(identifiers))
	copy(shuffled, identifiers)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	var duration int64
	for _, identifier := range shuffled {
		duration += f(identifier)
	}
	fmt.Printf("%10d", duration/int64(len(identifiers)*1000))
}

func sendPostRequest(contact model.Contact) int64 {
	body, err := json.Marshal(contact)
	if err != nil {
		fmt.Println("could not marshal JSON", err)
		panic(err)
	}
	requestURL := fmt.Sprintf("http://localhost:%d/contacts", serverPort)
	_, duration := sendRequest(http.MethodPost, requestURL, bytes.NewReader(body))
	return duration
}

func sendRequestForID(identifier string, method string, bodyReader io.Reader) int64 {
	requestURL := fmt.Sprintf("http://localhost:%d/contacts/%s", serverPort, url.PathEscape(identifier))
	_, duration := sendRequest(method, requestURL, bodyReader)
	return duration
}

func sendRequest(method string, requestURL string, bodyReader io.Reader) ([]byte, int64) {
	req, err := http.NewRequest(method, requestURL, bodyReader)
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	req.Header.Set("Content-Type", "application/json")
	before := time.Now().UnixNano()
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	after := time.Now().UnixNano()
	return resBody, after - before
}
