package repositories

import (
	"fmt"
	"log/slog"
	"testing"
)

func BenchmarkMessageRepository_Append(b *testing.B) {
	db := openBenchDB(b)
	users := NewUserRepository(db)
	repository, err := NewMessageRepository(db, slog.New(slog.DiscardHandler))
	if err != nil {
		b.Fatal(err)
	}
	defer repository.Close()
	alice := createBenchUser(b, users, "alice")
	bob := createBenchUser(b, users, "bob")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := repository.Append(alice, bob, "Hello world, this is a performance test"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMessageRepository_FindConversation reads one pair among many
// busy conversations so the prefix scan has to skip nothing but its own keys.
func BenchmarkMessageRepository_FindConversation(b *testing.B) {
	db := openBenchDB(b)
	users := NewUserRepository(db)
	repository, err := NewMessageRepository(db, slog.New(slog.DiscardHandler))
	if err != nil {
		b.Fatal(err)
	}
	defer repository.Close()

	ids := make([]string, 10)
	for i := range ids {
		ids[i] = createBenchUser(b, users, fmt.Sprintf("user_%d", i))
	}
	for i := 0; i < 5_000; i++ {
		sender, receiver := ids[i%len(ids)], ids[(i+1)%len(ids)]
		if _, err := repository.Append(sender, receiver, "seed"); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		messages, err := repository.FindConversation(ids[0], ids[1])
		if err != nil {
			b.Fatal(err)
		}
		if len(messages) == 0 {
			b.Fatal("empty conversation")
		}
	}
}
