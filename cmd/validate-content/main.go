// Package main provides a CLI that loads every content directory and
// cross-checks references between them, so broken content fails in CI
// instead of at server boot.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/seiyria/landoftherair/internal/game/effect"
	"github.com/seiyria/landoftherair/internal/game/item"
	"github.com/seiyria/landoftherair/internal/game/npc"
	"github.com/seiyria/landoftherair/internal/game/world"
)

func main() {
	start := time.Now()

	contentDir := flag.String("content", "content", "path to the content root directory")
	flag.Parse()

	maps, err := world.LoadMapsFromDir(filepath.Join(*contentDir, "maps"))
	if err != nil {
		log.Fatalf("loading maps: %v", err)
	}
	worldMgr, err := world.NewManager(maps)
	if err != nil {
		log.Fatalf("indexing maps: %v", err)
	}
	if err := worldMgr.ValidateTeleports(); err != nil {
		log.Fatalf("validating teleports: %v", err)
	}

	items, err := item.LoadItems(filepath.Join(*contentDir, "items"))
	if err != nil {
		log.Fatalf("loading items: %v", err)
	}

	effects, err := effect.LoadDirectory(filepath.Join(*contentDir, "effects"))
	if err != nil {
		log.Fatalf("loading effects: %v", err)
	}

	templates, err := npc.LoadTemplates(filepath.Join(*contentDir, "npcs"))
	if err != nil {
		log.Fatalf("loading npc templates: %v", err)
	}

	var problems []string

	for _, mp := range maps {
		for _, sc := range mp.Spawns {
			if _, ok := templates[sc.Template]; !ok {
				problems = append(problems, fmt.Sprintf(
					"map %s: spawn references unknown npc template %q", mp.Name, sc.Template))
			}
		}
		for _, trap := range mp.Traps {
			if _, ok := effects.Def(trap.Effect); !ok {
				problems = append(problems, fmt.Sprintf(
					"map %s: trap at (%d, %d) references unknown effect %q",
					mp.Name, trap.X, trap.Y, trap.Effect))
			}
		}
	}

	for name, tmpl := range templates {
		for _, gearItem := range []string{tmpl.RightHand, tmpl.LeftHand} {
			if gearItem == "" {
				continue
			}
			if _, ok := items.Get(gearItem); !ok {
				problems = append(problems, fmt.Sprintf(
					"npc %s: gear references unknown item %q", name, gearItem))
			}
		}
		for _, gearItem := range tmpl.Gear {
			if _, ok := items.Get(gearItem); !ok {
				problems = append(problems, fmt.Sprintf(
					"npc %s: gear references unknown item %q", name, gearItem))
			}
		}
		if tmpl.Loot != nil {
			for _, drop := range tmpl.Loot.Items {
				if _, ok := items.Get(drop.Item); !ok {
					problems = append(problems, fmt.Sprintf(
						"npc %s: loot references unknown item %q", name, drop.Item))
				}
			}
		}
	}

	for _, name := range effects.Names() {
		def, _ := effects.Def(name)
		if def.Duration < 0 {
			problems = append(problems, fmt.Sprintf("effect %s: negative duration", name))
		}
	}

	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintln(os.Stderr, p)
		}
		log.Fatalf("content validation failed: %d problem(s) [%s]", len(problems), time.Since(start))
	}

	fmt.Fprintf(os.Stdout, "content ok: %d maps, %d items, %d effects, %d npc templates [%s]\n",
		len(maps), items.Count(), len(effects.Names()), len(templates), time.Since(start))
}
