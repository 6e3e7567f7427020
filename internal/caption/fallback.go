package caption

import (
	"math/rand/v2"
	"strings"
	"sync"
)

// Lines use {name} as the placeholder for the target.
var generalLines = map[Intensity]map[Style][]string{
	Mild: {
		Funny: {
			"When {name} thinks they can cook but everyone's just being polite",
			"{name}'s playlist when they offer to DJ the party",
			`{name} explaining why they were "only 5 minutes late"`,
			`When {name} says they're "almost done" with the group project`,
			"{name}'s face when the WiFi drops for 3 seconds",
		},
		Sarcastic: {
			`"I'm great at directions" - {name}, currently 20 miles off course`,
			`{name}'s definition of "clean room" is truly revolutionary`,
			`{name} saying they'll "be ready in 5 minutes" for the tenth time`,
			"Oh look, {name} is telling that story again... how fascinating",
			`{name}'s idea of "meal prep" is ordering takeout for the week`,
		},
		Clever: {
			"{name}'s browser history: 'how to look busy while doing nothing at work'",
			`{name}'s autobiography: "I'll Get To It Tomorrow - A Procrastinator's Tale"`,
			"{name}: Exercise? I thought you said 'extra fries'",
			"{name}'s dance moves: confusing but delivered with confidence",
			"{name}'s strategy for adulting: pretend until it somehow works out",
		},
	},
	Medium: {
		Funny: {
			`{name} after spending 5 hours on TikTok: "I don't know where the day went"`,
			"{name}'s cooking skills have the smoke detector working overtime",
			"{name}'s dating profile vs {name} in real life",
			`When {name} says "I'll pick up the tab next time" for the 8th week in a row`,
			`{name} explaining why showing up 40 minutes late is "actually on time"`,
		},
		Sarcastic: {
			"{name}'s contribution to the group project was truly... minimal yet confident",
			"{name} giving fitness advice is like a sloth teaching a sprinting class",
			"{name}'s playlists have ruined more parties than bad weather",
			`{name}'s "shortcut" that added 30 minutes to our journey was super helpful`,
			`Yes {name}, tell us again how you "almost" went pro in high school sports`,
		},
		Clever: {
			"{name} doesn't actually use email, they just respond to the notifications",
			"{name}'s workout routine consists solely of jumping to conclusions",
			"{name}'s approach to deadlines: panic, procrastinate, pray, repeat",
			"The food in {name}'s fridge has started its own civilization",
			`{name}'s bank account after online shopping: "I'm never gonna financially recover from this"`,
		},
	},
	Savage: {
		Funny: {
			`{name}'s search history: "how to convince others you're smart without actually studying"`,
			"{name} getting ready to post another gym selfie after doing exactly 3 push-ups",
			"LinkedIn: Professional {name}. Instagram: Party {name}. Reality: Disappointment {name}.",
			`{name}'s idea of "meal prep" is deciding which fast food drive-thru to visit each day`,
			"{name}'s room is so messy even Marie Kondo would just burn the whole place down",
		},
		Sarcastic: {
			"{name}'s opinions are like their fashion sense - we all have to endure it, but nobody asked for it",
			"{name}'s diet plan: take pictures of salads for Instagram, then order pizza",
			`{name}'s "detailed explanation" contains about as much substance as a hollow chocolate bunny`,
			"{name} treating basic adult responsibilities like they deserve a medal and parade",
			`Nothing says "I'm insecure" quite like {name}'s need to mention their one accomplishment from 2015`,
		},
		Clever: {
			"If commitment issues were a person, they'd be jealous of {name}",
			"{name} has the attention span of a goldfish with ADHD at a laser light show",
			"{name}'s excuses are like onions - multi-layered and they make everyone cry",
			"{name}'s résumé contains more fiction than the entire Lord of the Rings series",
			"Scientists are studying {name}'s ability to talk for hours without actually saying anything of substance",
		},
	},
}

var templateLines = map[string][]string{
	"Drake Hotline Bling": {
		"{name} avoiding responsibilities | {name} avoiding responsibilities by making memes about avoiding responsibilities",
		"{name} when asked to help with chores | {name} when invited to waste time online",
		"{name} waking up for work | {name} staying up until 3AM watching videos",
	},
	"Distracted Boyfriend": {
		"{name} | Any bad idea ever | Common sense",
		`{name} | "Just one more episode" | Sleep and responsibilities`,
		`{name} | The "easy way" | Actually doing things properly`,
	},
	"Change My Mind": {
		"{name}'s cooking belongs in a horror movie, change my mind",
		"{name} couldn't find their way out of a paper bag even with GPS, change my mind",
		"{name} has more excuses than actual work completed, change my mind",
	},
}

// templateLineChance is how often a template-specific line is preferred when
// one exists.
const templateLineChance = 0.4

// Fallback picks a canned caption. It is safe for concurrent use.
type Fallback struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFallback returns a fallback drawing from rng, or from a randomly seeded
// source when rng is nil.
func NewFallback(rng *rand.Rand) *Fallback {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Fallback{rng: rng}
}

// Caption returns a caption for req. It never fails.
func (f *Fallback) Caption(req Request) string {
	req = req.Normalized()
	name := req.Target
	if name == "" {
		name = "You"
	}

	f.mu.Lock()
	var line string
	if specific, ok := templateLines[req.Template]; ok && f.rng.Float64() < templateLineChance {
		line = specific[f.rng.IntN(len(specific))]
	} else {
		lines := generalLines[req.Intensity][req.Style]
		line = lines[f.rng.IntN(len(lines))]
	}
	f.mu.Unlock()

	return strings.ReplaceAll(line, "{name}", name)
}
