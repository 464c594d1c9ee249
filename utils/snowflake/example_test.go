package snowflake_test

import (
	"fmt"
	"log"

	"github.com/Gopher0727/GroupChat/utils/snowflake"
)

func ExampleGenerator_NextID() {
	gen, err := snowflake.NewGenerator(1)
	if err != nil {
		log.Fatal(err)
	}

	id := gen.NextID()
	fmt.Println(snowflake.WorkerID(id))
	// Output: 1
}
