package graph_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/metromap/pkg/graph"
)

func ExampleReadCareerMap() {
	input := `
name: Engineering
paths:
  - id: ic
    roles:
      - {id: eng1, level: 1}
      - {id: eng2, level: 2}
  - id: mgmt
    roles:
      - {id: eng2, level: 2}
      - {id: em, level: 3}
`
	m, err := graph.ReadCareerMap(strings.NewReader(input), graph.FormatYAML)
	if err != nil {
		panic(err)
	}
	fmt.Println(m.Name, len(m.Paths), m.RoleCount())
	// Output: Engineering 2 4
}

func ExampleCareerMapFromRows() {
	m := graph.CareerMapFromRows(
		[]graph.PathRow{{ID: "mgmt", Order: 2}, {ID: "ic", Order: 1}},
		[]graph.PositionRow{
			{ID: "eng1", CareerPathID: "ic", Title: "Engineer I", Level: 1},
			{ID: "em", CareerPathID: "mgmt", Title: "Manager", Level: 3},
		},
		nil,
	)
	for _, p := range m.Paths {
		fmt.Println(p.ID, p.Roles[0].Name)
	}
	// Output:
	// ic Engineer I
	// mgmt Manager
}

func ExampleFormatFromPath() {
	fmt.Println(graph.FormatFromPath("careers.yml"))
	fmt.Println(graph.FormatFromPath("careers.toml"))
	fmt.Println(graph.FormatFromPath("careers.json"))
	// Output:
	// yaml
	// toml
	// json
}
