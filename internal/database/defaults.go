package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ekene/oryo/internal/database/repository"
)

func seedID(kind, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(kind+":"+key)).String()
}

// CreatorID returns the stable seed id for a creator handle.
func CreatorID(handle string) string { return seedID("creator", handle) }

type seedCreator struct {
	name, handle, bio, address string
	followers                  int
	badges                     []string
	posts                      []string
}

var seedCreators = []seedCreator{
	{
		name: "Adewale", handle: "@adewale", address: "15oF4uVJwmo4TdGW7VfQxNLavjCXviqxT9S1MgbjMNHr6Sp5",
		bio: "Afrobeats producer. Beats every Friday.", followers: 1280,
		badges: []string{"Top Creator", "Early Supporter"},
		posts:  []string{"New beat tape drops tonight, link in bio.", "Studio session with the crew, thank you for the tips!"},
	},
	{
		name: "Chioma", handle: "@chioma", address: "14ShUZUYUR35RBZW6uVVt1zXDxmSQddkeDdXf1JkMA6P721N",
		bio: "Illustrator and comic artist from Enugu.", followers: 842,
		badges: []string{"Artist"},
		posts:  []string{"Chapter 3 of Ngozi's Journey is live."},
	},
	{
		name: "Tunde", handle: "@tunde.codes", address: "16ZL8yLyXv3V3L3z9ofR1ovFLziyXaN1DPq4yffMAZ9czzBD",
		bio: "Teaching Rust and Substrate in Yoruba.", followers: 2310,
		badges: []string{"Educator", "Top Creator"},
		posts:  []string{"Live coding a pallet from scratch on Saturday.", "Slides from the Lagos meetup are up."},
	},
	{
		name: "Amara", handle: "@amara.writes", address: "13UVJyLnbVp9RBZYFwFGyDvVd1y27Tt8tkntv6Q7JVPhFsTB",
		bio: "Short fiction, long walks.", followers: 415,
		posts: []string{"A new story about the harmattan, free to read."},
	},
	{
		name: "Kwame", handle: "@kwame", address: "1qnJN7FViy3HZaxZK9tGAA71zxHSBeUweirKqCaox4t8GT7",
		bio: "Street photographer in Accra.", followers: 967,
		badges: []string{"Photographer"},
		posts:  []string{"Makola market at dawn, full set in the gallery."},
	},
}

var seedCommunities = []repository.Community{
	{Name: "Lagos Builders", Description: "Developers shipping on Polkadot from Lagos.", Members: 1200},
	{Name: "Afro Creatives", Description: "Artists, musicians and writers supporting each other.", Members: 860},
	{Name: "Tip Jar Tuesday", Description: "Weekly spotlight on small creators.", Members: 310},
}

type seedEvent struct {
	title, host, location string
	inDays                int
	attendees             int
}

var seedEvents = []seedEvent{
	{title: "Beat Tape Listening Party", host: "@adewale", location: "Online", inDays: 3, attendees: 120},
	{title: "Substrate Workshop", host: "@tunde.codes", location: "Yaba, Lagos", inDays: 10, attendees: 45},
	{title: "Photo Walk: Jamestown", host: "@kwame", location: "Accra", inDays: 21, attendees: 18},
}

// SeedDefaults inserts the display records for a new database.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB, now time.Time) error {
	creators := repository.NewCreatorRepo(db)
	existing, err := creators.List(ctx)
	if err == nil && len(existing) > 0 {
		return nil
	}
	posts := repository.NewPostRepo(db)
	badges := repository.NewBadgeRepo(db)
	communities := repository.NewCommunityRepo(db)
	events := repository.NewEventRepo(db)

	postAge := 0
	for idx, sc := range seedCreators {
		id := CreatorID(sc.handle)
		c := repository.Creator{
			ID: id, Name: sc.name, Handle: sc.handle, Bio: sc.bio, Address: sc.address,
			Followers: sc.followers, SortOrder: idx,
		}
		if err := creators.Upsert(ctx, c); err != nil {
			return err
		}
		for _, name := range sc.badges {
			b := repository.Badge{ID: seedID("badge", sc.handle+"/"+name), CreatorID: id, Name: name, Icon: "★"}
			if err := badges.Upsert(ctx, b); err != nil {
				return err
			}
		}
		for i, body := range sc.posts {
			postAge++
			p := repository.Post{
				ID:        seedID("post", sc.handle+"/"+body),
				CreatorID: id,
				Body:      body,
				Likes:     (len(body) * (i + 3)) % 97,
				CreatedAt: now.Add(-time.Duration(postAge*3) * time.Hour).UTC(),
			}
			if err := posts.Upsert(ctx, p); err != nil {
				return err
			}
		}
	}
	for _, c := range seedCommunities {
		c.ID = seedID("community", c.Name)
		if err := communities.Upsert(ctx, c); err != nil {
			return err
		}
	}
	for _, e := range seedEvents {
		host := CreatorID(e.host)
		ev := repository.Event{
			ID:        seedID("event", e.title),
			Title:     e.title,
			HostID:    &host,
			Location:  e.location,
			StartsAt:  now.AddDate(0, 0, e.inDays),
			Attendees: e.attendees,
		}
		if err := events.Upsert(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
