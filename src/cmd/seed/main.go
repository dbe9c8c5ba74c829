// Command seed clears the database and fills it with generated users,
// follows, tagged posts, comments and ratings for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"gamingrealm-backend/src/clients"
	"gamingrealm-backend/src/internal/config"
	"gamingrealm-backend/src/internal/credentials"
	"gamingrealm-backend/src/internal/logger"
	"gamingrealm-backend/src/internal/post"
	"gamingrealm-backend/src/internal/user"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const seedPassword = "abcdefg"

var tagNames = []string{
	"pubg", "cod", "amongus", "valorant", "fortnite", "forza",
	"godofwar", "witcher", "rust", "minecraft", "fifa", "f1",
}

var nouns = []string{
	"raid", "clutch", "speedrun", "patch", "loadout", "boss",
	"squad", "ranked", "mod", "dlc", "glitch", "tournament",
}

var adjectives = []string{
	"insane", "casual", "broken", "underrated", "legendary",
	"sweaty", "cursed", "wholesome",
}

func main() {
	users := flag.Int("users", 20, "number of users to create")
	posts := flag.Int("posts", 60, "number of posts to create")
	seed := flag.Int64("seed", 0, "random seed")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg)

	rng := rand.New(rand.NewSource(*seed))

	mongodb, err := clients.NewMongoDB(&cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Could not connect to MongoDB")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	defer mongodb.Close(ctx)

	if err := run(ctx, mongodb, cfg, rng, *users, *posts); err != nil {
		logrus.WithError(err).Fatal("Seeding failed")
	}
	logrus.Info("Seeding complete")
}

func run(ctx context.Context, mongodb *clients.MongoDB, cfg *config.Configuration, rng *rand.Rand, userCount, postCount int) error {
	if err := clearDatabase(ctx, mongodb, cfg); err != nil {
		return err
	}

	userRepo := user.NewUserRepository(mongodb,
		cfg.Database.Collections.Users, cfg.Database.Collections.Followers)
	hasher := credentials.NewHasher(&cfg.Security.Argon2)

	hash, err := hasher.Hash(seedPassword)
	if err != nil {
		return err
	}

	created := make([]*user.User, 0, userCount)
	for i := 0; i < userCount; i++ {
		u, err := userRepo.Insert(ctx, &user.User{
			Username: fmt.Sprintf("%s_%s%d", adjectives[rng.Intn(len(adjectives))], nouns[rng.Intn(len(nouns))], i),
			Email:    fmt.Sprintf("player%d@gamingrealm.example", i),
			Password: hash,
		})
		if err != nil {
			return err
		}
		created = append(created, u)
	}
	logrus.Infof("Created %d users", len(created))

	follows := 0
	for i := 0; i < 3*userCount; i++ {
		u1 := created[rng.Intn(len(created))]
		u2 := created[rng.Intn(len(created))]
		if u1.ID == u2.ID {
			continue
		}
		if err := userRepo.Follow(ctx, u1.ID.Hex(), u2.ID.Hex()); err == nil {
			follows++
		}
	}
	logrus.Infof("Attempted making %d followers; made %d", 3*userCount, follows)

	tags := mongodb.Database.Collection(cfg.Database.Collections.Tags)
	for _, name := range tagNames {
		if _, err := tags.InsertOne(ctx, post.Tag{TagName: name}); err != nil {
			return err
		}
	}
	logrus.Infof("Created %d tags", len(tagNames))

	posts := mongodb.Database.Collection(cfg.Database.Collections.Posts)
	comments := mongodb.Database.Collection(cfg.Database.Collections.Comments)
	ratings := mongodb.Database.Collection(cfg.Database.Collections.Ratings)

	for i := 0; i < postCount; i++ {
		author := created[rng.Intn(len(created))]
		postTags := []string{tagNames[rng.Intn(len(tagNames))]}

		res, err := posts.InsertOne(ctx, post.Post{
			AuthorID:       author.ID.Hex(),
			AuthorUsername: author.Username,
			Title: fmt.Sprintf("%s %s in %s",
				adjectives[rng.Intn(len(adjectives))],
				nouns[rng.Intn(len(nouns))],
				postTags[0]),
			TextContent: fmt.Sprintf("Thoughts on the %s %s, discuss.",
				adjectives[rng.Intn(len(adjectives))],
				nouns[rng.Intn(len(nouns))]),
			Tags:      postTags,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		postID := res.InsertedID.(primitive.ObjectID).Hex()
		for j := 0; j < rng.Intn(4); j++ {
			commenter := created[rng.Intn(len(created))]
			if _, err := comments.InsertOne(ctx, bson.M{
				"post_id":         postID,
				"author_id":       commenter.ID.Hex(),
				"author_username": commenter.Username,
				"content":         fmt.Sprintf("That %s was %s.", nouns[rng.Intn(len(nouns))], adjectives[rng.Intn(len(adjectives))]),
				"created_at":      time.Now().UTC(),
			}); err != nil {
				return err
			}
		}

		for j := 0; j < rng.Intn(5); j++ {
			rater := created[rng.Intn(len(created))]
			if _, err := ratings.UpdateOne(ctx,
				bson.M{"post_id": postID, "user_id": rater.ID.Hex()},
				bson.M{"$set": bson.M{"value": 1 + rng.Intn(5), "created_at": time.Now().UTC()}},
				options.Update().SetUpsert(true),
			); err != nil {
				return err
			}
		}
	}
	logrus.Infof("Created %d posts", postCount)

	return nil
}

func clearDatabase(ctx context.Context, mongodb *clients.MongoDB, cfg *config.Configuration) error {
	collections := []string{
		cfg.Database.Collections.Users,
		cfg.Database.Collections.Posts,
		cfg.Database.Collections.PostMedia,
		cfg.Database.Collections.Comments,
		cfg.Database.Collections.Ratings,
		cfg.Database.Collections.Tags,
		cfg.Database.Collections.Followers,
	}
	for _, name := range collections {
		if _, err := mongodb.Database.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return err
		}
	}
	logrus.Info("Cleared the database")
	return nil
}
