package remote

// GraphQL documents sent to the best-combination API.
const (
	getTeamsQuery = `
    query GetTeams {
        getTeams
    }
`

	getTournamentsQuery = `
    query GetTournaments {
        getTournaments
    }
`

	getSuggestionQuery = `
    query GetSuggestion($input: String!) {
        getSuggestion(input: $input)
    }
`

	getBestCombinationQuery = `
    query GetBestCombination($input: [String!]!, $opts: FetchOptions!) {
        getBestCombination(input: $input, opts: $opts) {
            status
            data {
                index
                combinedCoverage
                combinedMonthlyPriceCents
                combinedMonthlyPriceYearlySubscriptionInCents
                packages {
                    name
                    coverage
                    monthlyPriceCents
                    monthlyPriceYearlySubscriptionInCents
                }
            }
        }
    }
`

	enqueueBestCombinationMutation = `
    mutation EnqueueBestCombination($input: [String!]!, $opts: FetchOptions!) {
        enqueueBestCombination(input: $input, opts: $opts)
    }
`
)
