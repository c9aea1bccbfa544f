package garbage

import (
	"errors"
	"testing"

	"github.com/konkers/sdv-predict/internal/condition"
	"github.com/konkers/sdv-predict/internal/drop"
	"github.com/konkers/sdv-predict/internal/game"
	"github.com/konkers/sdv-predict/internal/rng"
	"github.com/konkers/sdv-predict/internal/save"
)

const gameID = 254546202

func loadTables(t *testing.T) *game.Tables {
	t.Helper()
	tables, err := game.NewLoader("../../data", "").Tables()
	if err != nil {
		t.Fatalf("load data: %v", err)
	}
	return tables
}

type row struct {
	day  uint32
	can  string
	item string
	qty  int
	cond condition.Result
}

// Every can that yields something on days 1-4 of a fresh save; all others
// come up empty.
var fixture = []row{
	{1, "JodiAndKent", "(O)172", 1, condition.Static(true)},
	{1, "Museum", "(O)216", 1, condition.Static(true)},
	{1, "Saloon", "(O)382", 1, condition.Static(true)},
	{2, "Blacksmith", "(O)172", 1, condition.WithDailyLuck(0.06764924492111862)},
	{2, "EmilyAndHaley", "(O)403", 1, condition.WithDailyLuck(0.01593356915560251)},
	{2, "JojaMart", "(O)167", 1, condition.WithDailyLuck(0.07852523044148702)},
	{3, "EmilyAndHaley", "(O)390", 1, condition.Static(true)},
	{4, "JodiAndKent", "(O)390", 1, condition.WithDailyLuck(0.04146529512548133)},
	{4, "Mayor", "(O)388", 1, condition.WithDailyLuck(0.05827249505476678)},
}

func TestFixtureDays(t *testing.T) {
	tables := loadTables(t)
	for day := uint32(1); day <= 4; day++ {
		got, err := PredictAll(rng.Hashed{}, tables, save.Facts{GameID: gameID, DaysPlayed: day})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(tables.CanIDs()) {
			t.Fatalf("day %d: %d predictions", day, len(got))
		}
		for _, p := range got {
			var want *row
			for i := range fixture {
				if fixture[i].day == day && fixture[i].can == p.Can {
					want = &fixture[i]
				}
			}
			if want == nil {
				if p.Found {
					t.Fatalf("day %d %s: unexpected %v", day, p.Can, p.Reward)
				}
				continue
			}
			if !p.Found || p.Reward != (drop.Reward{ItemID: want.item, Quantity: want.qty}) || p.Condition != want.cond {
				t.Fatalf("day %d %s: got %v %v, want %s x%d %v", day, p.Can, p.Reward, p.Condition, want.item, want.qty, want.cond)
			}
		}
	}
}

func TestTrashBookBonus(t *testing.T) {
	tables := loadTables(t)
	f := save.Facts{GameID: gameID, DaysPlayed: 2, HasTrashBook: true}
	p, err := Predict(rng.Hashed{}, tables, "Blacksmith", f)
	if err != nil {
		t.Fatal(err)
	}
	if p.Reward.ItemID != "(O)172" || p.Condition != condition.Static(true) {
		t.Fatalf("book should lift the roll into a sure hit: %+v", p)
	}

	f.DaysPlayed = 4
	p, err = Predict(rng.Hashed{}, tables, "Saloon", f)
	if err != nil {
		t.Fatal(err)
	}
	want := condition.WithDailyLuck(0.05550692866347118)
	if p.DropID != "Saloon_Dish" || p.Reward.ItemID != "(O)195" || p.Condition != want {
		t.Fatalf("saloon: %+v", p)
	}
}

func TestIgnoreBaseChance(t *testing.T) {
	tables := loadTables(t)
	f := save.Facts{GameID: gameID, DaysPlayed: 26, TrashCansChecked: 25}
	p, err := Predict(rng.Hashed{}, tables, "JodiAndKent", f)
	if err != nil {
		t.Fatal(err)
	}
	if p.DropID != "Base_GarbageHat" || p.Reward.ItemID != "(H)66" {
		t.Fatalf("hat: %+v", p)
	}
	f.TrashCansChecked = 3
	p, err = Predict(rng.Hashed{}, tables, "JodiAndKent", f)
	if err != nil {
		t.Fatal(err)
	}
	if p.Found {
		t.Fatalf("without the stat gate nothing drops: %+v", p)
	}

	f = save.Facts{GameID: gameID, DaysPlayed: 1, QiBeansActive: true}
	p, err = Predict(rng.Hashed{}, tables, "Evelyn", f)
	if err != nil {
		t.Fatal(err)
	}
	if p.DropID != "Base_QiBeans" || p.Reward.ItemID != "(O)890" {
		t.Fatalf("qi beans: %+v", p)
	}
}

func TestJojaMovieTheater(t *testing.T) {
	tables := loadTables(t)
	f := save.Facts{GameID: gameID, DaysPlayed: 65}
	p, err := Predict(rng.Hashed{}, tables, "JojaMart", f)
	if err != nil {
		t.Fatal(err)
	}
	luck := condition.WithDailyLuck(0.0744838140320423)
	if p.DropID != "Joja_Cola" || p.Condition != luck {
		t.Fatalf("before theater: %+v", p)
	}
	f.Mail = []string{"ccMovieTheater"}
	p, err = Predict(rng.Hashed{}, tables, "JojaMart", f)
	if err != nil {
		t.Fatal(err)
	}
	if p.DropID != "Joja_Ticket" || p.Reward.ItemID != "(O)809" || p.Condition != luck {
		t.Fatalf("after theater: %+v", p)
	}
}

func TestStackRange(t *testing.T) {
	tables := loadTables(t)
	f := save.Facts{GameID: gameID, DaysPlayed: 16, TrashCansChecked: 25}
	p, err := Predict(rng.Hashed{}, tables, "Blacksmith", f)
	if err != nil {
		t.Fatal(err)
	}
	if p.Reward != (drop.Reward{ItemID: "(O)378", Quantity: 3}) {
		t.Fatalf("got %+v", p)
	}
	// no hat roll means one fewer draw before the ore
	f.TrashCansChecked = 0
	p, err = Predict(rng.Hashed{}, tables, "Blacksmith", f)
	if err != nil {
		t.Fatal(err)
	}
	if p.Reward != (drop.Reward{ItemID: "(O)378", Quantity: 1}) {
		t.Fatalf("got %+v", p)
	}
}

func TestUnknownCan(t *testing.T) {
	tables := loadTables(t)
	_, err := Predict(rng.Hashed{}, tables, "Nowhere", save.Facts{GameID: 1, DaysPlayed: 1})
	if !errors.Is(err, ErrUnknownCan) {
		t.Fatalf("want ErrUnknownCan, got %v", err)
	}
}

func TestUnknownConditionIsFatal(t *testing.T) {
	raw := game.RawData{
		Garbage: game.GarbageDoc{
			Cans: map[string]game.CanData{
				"Odd": {BaseChance: 1, Items: []drop.Spec{{ID: "x", ItemID: "(O)1", Condition: "WEATHER Here Rain"}}},
			},
		},
	}
	tables, err := game.Build(raw)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Predict(rng.Hashed{}, tables, "Odd", save.Facts{GameID: 1, DaysPlayed: 1})
	if !errors.Is(err, condition.ErrUnknownCondition) {
		t.Fatalf("want ErrUnknownCondition, got %v", err)
	}
}
