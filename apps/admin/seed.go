package main

import (
	"context"
	"fmt"

	"github.com/trezcool/agenda/core/sample"
)

func (cli *commandLine) seed() error {
	summary, err := sample.NewPopulator(cli.store.Tx, cli.store.SampleRepositories(), cli.logger).
		Populate(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("created %d centers, %d users, %d classrooms, %d students, %d records, %d menus, %d news, %d photos\n",
		summary.Centers, summary.Users, summary.Classrooms, summary.Students,
		summary.Records, summary.Menus, summary.News, summary.Photos)
	return nil
}
