package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Sink --dir ../domain/audit --output domain/audit --outpkg auditmock --filename sink_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/league --output domain/league --outpkg leaguemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/leaderboard --output domain/leaderboard --outpkg leaderboardmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/evaluator --output domain/evaluator --outpkg evaluatormock --filename repository_mock.go
