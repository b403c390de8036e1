package simulate

// NorthCarolinaCounties lists every county of North Carolina.
var NorthCarolinaCounties = []string{
	"Alamance", "Alexander", "Alleghany", "Anson", "Ashe", "Avery", "Beaufort",
	"Bertie", "Bladen", "Brunswick", "Buncombe", "Burke", "Cabarrus", "Caldwell",
	"Camden", "Carteret", "Caswell", "Catawba", "Chatham", "Cherokee", "Chowan",
	"Clay", "Cleveland", "Columbus", "Craven", "Cumberland", "Currituck", "Dare",
	"Davidson", "Davie", "Duplin", "Durham", "Edgecombe", "Forsyth", "Franklin",
	"Gaston", "Gates", "Graham", "Granville", "Greene", "Guilford", "Halifax",
	"Harnett", "Haywood", "Henderson", "Hertford", "Hoke", "Hyde", "Iredell",
	"Jackson", "Johnston", "Jones", "Lee", "Lenoir", "Lincoln", "Macon",
	"Madison", "Martin", "McDowell", "Mecklenburg", "Mitchell", "Montgomery",
	"Moore", "Nash", "New Hanover", "Northampton", "Onslow", "Orange", "Pamlico",
	"Pasquotank", "Pender", "Perquimans", "Person", "Pitt", "Polk", "Randolph",
	"Richmond", "Robeson", "Rockingham", "Rowan", "Rutherford", "Sampson",
	"Scotland", "Stanly", "Stokes", "Surry", "Swain", "Transylvania", "Tyrrell",
	"Union", "Vance", "Wake", "Warren", "Washington", "Watauga", "Wayne",
	"Wilkes", "Wilson", "Yadkin", "Yancey",
}

// CountyRef names a county within a state.
type CountyRef struct {
	County string
	State  string
}

// ImportantCounties lists the most populous counties of the other states,
// most important first within each state.
var ImportantCounties = []CountyRef{
	// Alabama
	{"Jefferson", "Alabama"},
	{"Mobile", "Alabama"},
	{"Madison", "Alabama"},
	// Alaska
	{"Anchorage", "Alaska"},
	{"Fairbanks North Star", "Alaska"},
	{"Matanuska-Susitna", "Alaska"},
	// Arizona
	{"Maricopa", "Arizona"},
	{"Pima", "Arizona"},
	{"Pinal", "Arizona"},
	// Arkansas
	{"Pulaski", "Arkansas"},
	{"Benton", "Arkansas"},
	{"Washington", "Arkansas"},
	// California
	{"Los Angeles", "California"},
	{"San Diego", "California"},
	{"Orange", "California"},
	{"Riverside", "California"},
	{"San Bernardino", "California"},
	{"Santa Clara", "California"},
	{"Alameda", "California"},
	{"Sacramento", "California"},
	{"Contra Costa", "California"},
	{"Fresno", "California"},
	{"San Francisco", "California"},
	{"Ventura", "California"},
	{"San Mateo", "California"},
	// Colorado
	{"Denver", "Colorado"},
	{"El Paso", "Colorado"},
	{"Arapahoe", "Colorado"},
	{"Jefferson", "Colorado"},
	{"Adams", "Colorado"},
	// Connecticut
	{"Fairfield", "Connecticut"},
	{"Hartford", "Connecticut"},
	{"New Haven", "Connecticut"},
	// Delaware
	{"New Castle", "Delaware"},
	{"Sussex", "Delaware"},
	{"Kent", "Delaware"},
	// Florida
	{"Miami-Dade", "Florida"},
	{"Broward", "Florida"},
	{"Palm Beach", "Florida"},
	{"Hillsborough", "Florida"},
	{"Orange", "Florida"},
	{"Pinellas", "Florida"},
	{"Duval", "Florida"},
	{"Lee", "Florida"},
	// Georgia
	{"Fulton", "Georgia"},
	{"Gwinnett", "Georgia"},
	{"Cobb", "Georgia"},
	{"DeKalb", "Georgia"},
	// Hawaii
	{"Honolulu", "Hawaii"},
	{"Maui", "Hawaii"},
	{"Hawaii", "Hawaii"},
	// Idaho
	{"Ada", "Idaho"},
	{"Canyon", "Idaho"},
	{"Kootenai", "Idaho"},
	// Illinois
	{"Cook", "Illinois"},
	{"DuPage", "Illinois"},
	{"Lake", "Illinois"},
	{"Will", "Illinois"},
	// Indiana
	{"Marion", "Indiana"},
	{"Lake", "Indiana"},
	{"Allen", "Indiana"},
	{"Hamilton", "Indiana"},
	// Iowa
	{"Polk", "Iowa"},
	{"Linn", "Iowa"},
	{"Scott", "Iowa"},
	// Kansas
	{"Johnson", "Kansas"},
	{"Sedgwick", "Kansas"},
	{"Shawnee", "Kansas"},
	// Kentucky
	{"Jefferson", "Kentucky"},
	{"Fayette", "Kentucky"},
	{"Kenton", "Kentucky"},
	// Louisiana
	{"East Baton Rouge", "Louisiana"},
	{"Jefferson", "Louisiana"},
	{"Orleans", "Louisiana"},
	// Maine
	{"Cumberland", "Maine"},
	{"York", "Maine"},
	{"Penobscot", "Maine"},
	// Maryland
	{"Montgomery", "Maryland"},
	{"Prince George's", "Maryland"},
	{"Baltimore", "Maryland"},
	// Massachusetts
	{"Middlesex", "Massachusetts"},
	{"Suffolk", "Massachusetts"},
	{"Essex", "Massachusetts"},
	{"Worcester", "Massachusetts"},
	// Michigan
	{"Wayne", "Michigan"},
	{"Oakland", "Michigan"},
	{"Macomb", "Michigan"},
	{"Kent", "Michigan"},
	// Minnesota
	{"Hennepin", "Minnesota"},
	{"Ramsey", "Minnesota"},
	{"Dakota", "Minnesota"},
	// Mississippi
	{"Hinds", "Mississippi"},
	{"Harrison", "Mississippi"},
	{"DeSoto", "Mississippi"},
	// Missouri
	{"St. Louis", "Missouri"},
	{"Jackson", "Missouri"},
	{"St. Charles", "Missouri"},
	// Montana
	{"Yellowstone", "Montana"},
	{"Missoula", "Montana"},
	{"Gallatin", "Montana"},
	// Nebraska
	{"Douglas", "Nebraska"},
	{"Lancaster", "Nebraska"},
	{"Sarpy", "Nebraska"},
	// Nevada
	{"Clark", "Nevada"},
	{"Washoe", "Nevada"},
	{"Carson City", "Nevada"},
	// New Hampshire
	{"Hillsborough", "New Hampshire"},
	{"Rockingham", "New Hampshire"},
	{"Merrimack", "New Hampshire"},
	// New Jersey
	{"Bergen", "New Jersey"},
	{"Middlesex", "New Jersey"},
	{"Essex", "New Jersey"},
	{"Hudson", "New Jersey"},
	// New Mexico
	{"Bernalillo", "New Mexico"},
	{"Doña Ana", "New Mexico"},
	{"Santa Fe", "New Mexico"},
	// New York
	{"Kings", "New York"},
	{"Queens", "New York"},
	{"New York", "New York"},
	{"Suffolk", "New York"},
	{"Bronx", "New York"},
	{"Nassau", "New York"},
	{"Westchester", "New York"},
	{"Erie", "New York"},
	{"Monroe", "New York"},
	// North Dakota
	{"Cass", "North Dakota"},
	{"Burleigh", "North Dakota"},
	{"Grand Forks", "North Dakota"},
	// Ohio
	{"Franklin", "Ohio"},
	{"Cuyahoga", "Ohio"},
	{"Hamilton", "Ohio"},
	{"Summit", "Ohio"},
	{"Montgomery", "Ohio"},
	// Oklahoma
	{"Oklahoma", "Oklahoma"},
	{"Tulsa", "Oklahoma"},
	{"Cleveland", "Oklahoma"},
	// Oregon
	{"Multnomah", "Oregon"},
	{"Washington", "Oregon"},
	{"Clackamas", "Oregon"},
	// Pennsylvania
	{"Philadelphia", "Pennsylvania"},
	{"Allegheny", "Pennsylvania"},
	{"Montgomery", "Pennsylvania"},
	{"Bucks", "Pennsylvania"},
	// Rhode Island
	{"Providence", "Rhode Island"},
	{"Kent", "Rhode Island"},
	{"Washington", "Rhode Island"},
	// South Carolina
	{"Greenville", "South Carolina"},
	{"Richland", "South Carolina"},
	{"Charleston", "South Carolina"},
	// South Dakota
	{"Minnehaha", "South Dakota"},
	{"Pennington", "South Dakota"},
	{"Lincoln", "South Dakota"},
	// Tennessee
	{"Shelby", "Tennessee"},
	{"Davidson", "Tennessee"},
	{"Knox", "Tennessee"},
	{"Hamilton", "Tennessee"},
	// Texas
	{"Harris", "Texas"},
	{"Dallas", "Texas"},
	{"Tarrant", "Texas"},
	{"Bexar", "Texas"},
	{"Travis", "Texas"},
	{"Collin", "Texas"},
	{"Denton", "Texas"},
	{"El Paso", "Texas"},
	{"Fort Bend", "Texas"},
	{"Hidalgo", "Texas"},
	// Utah
	{"Salt Lake", "Utah"},
	{"Utah", "Utah"},
	{"Davis", "Utah"},
	// Vermont
	{"Chittenden", "Vermont"},
	{"Washington", "Vermont"},
	{"Rutland", "Vermont"},
	// Virginia
	{"Fairfax", "Virginia"},
	{"Prince William", "Virginia"},
	{"Loudoun", "Virginia"},
	{"Virginia Beach", "Virginia"},
	// Washington
	{"King", "Washington"},
	{"Pierce", "Washington"},
	{"Snohomish", "Washington"},
	{"Spokane", "Washington"},
	// West Virginia
	{"Kanawha", "West Virginia"},
	{"Berkeley", "West Virginia"},
	{"Cabell", "West Virginia"},
	// Wisconsin
	{"Milwaukee", "Wisconsin"},
	{"Dane", "Wisconsin"},
	{"Waukesha", "Wisconsin"},
	// Wyoming
	{"Laramie", "Wyoming"},
	{"Natrona", "Wyoming"},
	{"Campbell", "Wyoming"},
}

var stateFIPS = map[string]string{
	"01": "Alabama", "02": "Alaska", "04": "Arizona", "05": "Arkansas",
	"06": "California", "08": "Colorado", "09": "Connecticut", "10": "Delaware",
	"11": "District of Columbia", "12": "Florida", "13": "Georgia", "15": "Hawaii",
	"16": "Idaho", "17": "Illinois", "18": "Indiana", "19": "Iowa",
	"20": "Kansas", "21": "Kentucky", "22": "Louisiana", "23": "Maine",
	"24": "Maryland", "25": "Massachusetts", "26": "Michigan", "27": "Minnesota",
	"28": "Mississippi", "29": "Missouri", "30": "Montana", "31": "Nebraska",
	"32": "Nevada", "33": "New Hampshire", "34": "New Jersey", "35": "New Mexico",
	"36": "New York", "37": "North Carolina", "38": "North Dakota", "39": "Ohio",
	"40": "Oklahoma", "41": "Oregon", "42": "Pennsylvania", "44": "Rhode Island",
	"45": "South Carolina", "46": "South Dakota", "47": "Tennessee", "48": "Texas",
	"49": "Utah", "50": "Vermont", "51": "Virginia", "53": "Washington",
	"54": "West Virginia", "55": "Wisconsin", "56": "Wyoming",
}

// UnknownState is returned for FIPS codes outside the 50 states and DC.
const UnknownState = "Unknown"

// StateFromFIPS maps a two-digit state FIPS code to the state name.
func StateFromFIPS(fips string) string {
	if name, ok := stateFIPS[fips]; ok {
		return name
	}
	return UnknownState
}

// FIPSFromState is the inverse of StateFromFIPS. It returns "00" for unknown names.
func FIPSFromState(state string) string {
	for code, name := range stateFIPS {
		if name == state {
			return code
		}
	}
	return "00"
}
