package runbox_test

import (
	"context"
	"fmt"
	"log"
	"time"

	runbox "github.com/gsarma/runbox/sdk"
)

func Example_basicUsage() {
	ctx := context.Background()
	client := runbox.New("http://localhost:8080", "your-api-token")

	// --- Run inline ---
	res, err := client.Runs.Execute(ctx, runbox.RunRequest{
		LanguageID: runbox.Python,
		SourceCode: `print("Hello, World!")`,
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(res.Result.Output)

	// --- Queue a run with stdin and wait for it ---
	queued, err := client.Runs.Create(ctx, runbox.RunRequest{
		LanguageID:   runbox.CPP,
		SourceCode:   "#include <iostream>\nint main(){int a,b;std::cin>>a>>b;std::cout<<a+b;}",
		Inputs:       []string{"3", "5"},
		InputEnabled: true,
	})
	if err != nil {
		log.Fatal(err)
	}

	st, err := client.Runs.Status(ctx, queued.JobID)
	if err == nil {
		fmt.Println("Status:", st.Status)
	}

	run, err := client.Runs.Wait(ctx, queued.JobID, time.Second)
	if err != nil {
		log.Fatal(err)
	}
	if run.Execution != nil {
		fmt.Println(run.Execution.Outcome, run.Execution.Output)
	}
}

func Example_languages() {
	ctx := context.Background()
	client := runbox.New("http://localhost:8080", "")

	list, err := client.Languages.List(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, l := range list.Languages {
		fmt.Println(l.ID, l.Name)
	}
}
